package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youassist/pkg/httpclient"
	"youassist/pkg/logger"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"leading whitespace", "  https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"missing v param", "https://www.youtube.com/watch?list=PLx", "", true},
		{"id too short", "https://youtu.be/short", "", true},
		{"id with bad characters", "https://www.youtube.com/watch?v=bad!chars!!", "", true},
		{"not a url", "not a url at all", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestFetcher(baseURL string) *Fetcher {
	client := httpclient.New(httpclient.Options{Timeout: 5 * time.Second})
	return NewFetcher(client, baseURL, "en", logger.New("test"))
}

func TestFetch_DecodesTimedText(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.5">Welcome to the channel</text>
  <text start="2.5" dur="3.1">Today we talk about Tom &amp; Jerry</text>
  <text start="5.6" dur="1.0">  </text>
</transcript>`))
	}))
	defer srv.Close()

	segments, err := newTestFetcher(srv.URL).Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "lang=en&v=dQw4w9WgXcQ", gotQuery)
	require.Len(t, segments, 2, "blank caption lines are dropped")
	assert.Equal(t, "Welcome to the channel", segments[0].Text)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 2.5, segments[0].Duration)
	assert.Equal(t, "Today we talk about Tom & Jerry", segments[1].Text)
	assert.Equal(t, 2.5, segments[1].Start)
}

func TestFetch_EmptyBodyMeansNoTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestFetch_EmptyTranscriptElement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<transcript></transcript>`))
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).Fetch(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(srv.URL).Fetch(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestJoinText(t *testing.T) {
	segments := []Segment{
		{Text: "first line"},
		{Text: "second line"},
		{Text: "third"},
	}
	assert.Equal(t, "first line second line third", JoinText(segments))
	assert.Equal(t, "", JoinText(nil))
}
