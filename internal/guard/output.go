package guard

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

// OutputToxicity vetoes answers whose worst sentence exceeds the toxicity
// threshold. Matching is per sentence so one hostile sentence in a long
// answer still trips the scanner.
type OutputToxicity struct {
	threshold float64
}

// NewOutputToxicity creates the scanner. A non-positive threshold falls
// back to 0.5.
func NewOutputToxicity(threshold float64) *OutputToxicity {
	if threshold <= 0 {
		threshold = 0.5
	}
	return &OutputToxicity{threshold: threshold}
}

func (s *OutputToxicity) Name() string { return "Toxicity" }

func (s *OutputToxicity) Scan(prompt, output string) (Verdict, error) {
	score := toxicityScore(output)
	if score >= s.threshold {
		return Verdict{Sanitized: output, Valid: false, Risk: score}, nil
	}
	return Verdict{Sanitized: output, Valid: true, Risk: score}, nil
}

// Bias vetoes answers containing sweeping-generalization markers.
type Bias struct {
	patterns []*regexp.Regexp
}

var defaultBiasPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\ball\s+(men|women|foreigners|immigrants|old\s+people|young\s+people)\s+(are|can't|cannot|always|never)\b`),
	regexp.MustCompile(`(?i)\b(men|women)\s+are\s+(naturally|inherently|obviously)\s+(better|worse|smarter|dumber)\b`),
	regexp.MustCompile(`(?i)\bpeople\s+from\s+[a-z]+\s+are\s+(all|always|never)\b`),
	regexp.MustCompile(`(?i)\beveryone\s+knows\s+(that\s+)?(those|these)\s+people\b`),
}

// NewBias creates the scanner with the built-in marker set.
func NewBias() *Bias {
	return &Bias{patterns: defaultBiasPatterns}
}

func (s *Bias) Name() string { return "Bias" }

func (s *Bias) Scan(prompt, output string) (Verdict, error) {
	for _, p := range s.patterns {
		if p.MatchString(output) {
			return Verdict{Sanitized: output, Valid: false, Risk: 1}, nil
		}
	}
	return Verdict{Sanitized: output, Valid: true}, nil
}

// MaliciousURLs vetoes answers containing suspicious links: denylisted
// hosts, raw IP-literal hosts, userinfo tricks (user@host) and punycode
// lookalike domains.
type MaliciousURLs struct {
	hosts map[string]struct{}
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')]+`)

// NewMaliciousURLs creates the scanner with an optional extra host denylist.
func NewMaliciousURLs(hosts []string) *MaliciousURLs {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		set[strings.ToLower(h)] = struct{}{}
	}
	return &MaliciousURLs{hosts: set}
}

func (s *MaliciousURLs) Name() string { return "MaliciousURLs" }

func (s *MaliciousURLs) Scan(prompt, output string) (Verdict, error) {
	for _, raw := range urlPattern.FindAllString(output, -1) {
		u, err := url.Parse(raw)
		if err != nil {
			return Verdict{Sanitized: output, Valid: false, Risk: 1}, nil
		}
		if s.suspicious(u) {
			return Verdict{Sanitized: output, Valid: false, Risk: 1}, nil
		}
	}
	return Verdict{Sanitized: output, Valid: true}, nil
}

func (s *MaliciousURLs) suspicious(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if _, banned := s.hosts[host]; banned {
		return true
	}
	if u.User != nil {
		return true
	}
	if net.ParseIP(host) != nil {
		return true
	}
	if strings.Contains(host, "xn--") {
		return true
	}
	return false
}

// NoRefusal vetoes refusal-style non-answers, which indicate the model
// dodged the grounded question instead of answering from context.
type NoRefusal struct {
	patterns []*regexp.Regexp
}

var defaultRefusalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(i'm|i\s+am)\s+sorry\s*,?\s+but\s+i\s+(can(no|')t|am\s+unable)`),
	regexp.MustCompile(`(?i)^\s*i\s+(can(no|')t|won't|am\s+unable\s+to)\s+(help|assist|answer|provide|comply)`),
	regexp.MustCompile(`(?i)\bas\s+an\s+ai(\s+language\s+model)?\s*,?\s+i\s+(can(no|')t|am\s+unable|am\s+not\s+able)`),
	regexp.MustCompile(`(?i)^\s*i\s+apologize\s*,?\s+but\s+i\s+(can(no|')t|am\s+unable)`),
}

// NewNoRefusal creates the scanner with the built-in phrase set.
func NewNoRefusal() *NoRefusal {
	return &NoRefusal{patterns: defaultRefusalPatterns}
}

func (s *NoRefusal) Name() string { return "NoRefusal" }

func (s *NoRefusal) Scan(prompt, output string) (Verdict, error) {
	for _, p := range s.patterns {
		if p.MatchString(output) {
			return Verdict{Sanitized: output, Valid: false, Risk: 1}, nil
		}
	}
	return Verdict{Sanitized: output, Valid: true}, nil
}
