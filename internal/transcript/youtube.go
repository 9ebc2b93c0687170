// Package transcript fetches video transcripts from the YouTube timedtext
// endpoint. It is a thin collaborator of the RAG pipeline: URL parsing,
// one HTTP call, XML decoding.
package transcript

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"youassist/pkg/httpclient"
	"youassist/pkg/logger"
)

// ErrInvalidURL means the video id could not be extracted from the URL.
// This is user-correctable input, surfaced as a 4xx at the HTTP boundary.
var ErrInvalidURL = errors.New("invalid video URL: could not extract video id")

// ErrNoTranscript means the video has no caption track (captions disabled
// or not yet generated).
var ErrNoTranscript = errors.New("no transcript available for video")

// videoIDPattern matches the 11-character YouTube video id.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Segment is one timed caption line.
type Segment struct {
	Text     string
	Start    float64
	Duration float64
}

// ExtractVideoID pulls the video id out of the common YouTube URL forms:
// watch?v=, youtu.be/, /embed/ and /shorts/.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}

	var id string
	switch {
	case strings.HasSuffix(u.Host, "youtu.be"):
		id = strings.Trim(u.Path, "/")
	case strings.Contains(u.Path, "/embed/"):
		id = strings.TrimPrefix(u.Path, "/embed/")
	case strings.Contains(u.Path, "/shorts/"):
		id = strings.TrimPrefix(u.Path, "/shorts/")
	default:
		id = u.Query().Get("v")
	}
	id = strings.Trim(id, "/")

	if !videoIDPattern.MatchString(id) {
		return "", ErrInvalidURL
	}
	return id, nil
}

// Fetcher retrieves caption tracks over HTTP.
type Fetcher struct {
	client   *httpclient.Client
	baseURL  string
	language string
	log      *logger.Logger
}

// NewFetcher creates a Fetcher. baseURL points at a timedtext-compatible
// endpoint; tests substitute a local server.
func NewFetcher(client *httpclient.Client, baseURL, language string, log *logger.Logger) *Fetcher {
	if language == "" {
		language = "en"
	}
	return &Fetcher{client: client, baseURL: baseURL, language: language, log: log}
}

type timedText struct {
	XMLName xml.Name        `xml:"transcript"`
	Texts   []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Body     string  `xml:",chardata"`
}

// Fetch retrieves the ordered caption segments for a video.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	endpoint := fmt.Sprintf("%s?lang=%s&v=%s", f.baseURL, url.QueryEscape(f.language), url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build transcript request: %w", err)
	}

	f.log.Info(fmt.Sprintf("Fetching transcript for video %s", videoID))
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcript fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript fetch failed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript response: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrNoTranscript
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	if len(doc.Texts) == 0 {
		return nil, ErrNoTranscript
	}

	segments := make([]Segment, 0, len(doc.Texts))
	for _, line := range doc.Texts {
		// The endpoint HTML-escapes caption text inside the XML payload.
		text := strings.TrimSpace(html.UnescapeString(line.Body))
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Text:     text,
			Start:    line.Start,
			Duration: line.Duration,
		})
	}
	if len(segments) == 0 {
		return nil, ErrNoTranscript
	}
	return segments, nil
}

// JoinText flattens ordered segments into the transcript text blob the
// pipeline ingests.
func JoinText(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}
