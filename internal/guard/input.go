package guard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// PromptInjection vetoes input matching known prompt-injection patterns.
type PromptInjection struct {
	patterns []*regexp.Regexp
}

var defaultInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions|directions|prompts|messages)`),
	regexp.MustCompile(`(?i)disregard\s+(the\s+|your\s+)?(system\s+prompt|instructions|rules)`),
	regexp.MustCompile(`(?i)(reveal|show|print|repeat)\s+(me\s+)?(your\s+)?(system\s+prompt|hidden\s+instructions)`),
	regexp.MustCompile(`(?i)override\s+(your|the)\s+(rules|instructions|guidelines)`),
	regexp.MustCompile(`(?i)\b(jailbreak|dan\s+mode|developer\s+mode)\b`),
	regexp.MustCompile(`(?i)pretend\s+(that\s+)?you\s+(are|have)\s+no\s+(rules|restrictions|guidelines)`),
}

// NewPromptInjection creates the scanner with the built-in pattern set.
func NewPromptInjection() *PromptInjection {
	return &PromptInjection{patterns: defaultInjectionPatterns}
}

func (s *PromptInjection) Name() string { return "PromptInjection" }

func (s *PromptInjection) Scan(text string) (Verdict, error) {
	for _, p := range s.patterns {
		if p.MatchString(text) {
			return Verdict{Sanitized: text, Valid: false, Risk: 1}, nil
		}
	}
	return Verdict{Sanitized: text, Valid: true}, nil
}

// BanSubstrings vetoes input containing any of a configurable denylist of
// substrings, matched case-insensitively.
type BanSubstrings struct {
	substrings []string
}

// NewBanSubstrings creates the scanner with the given denylist.
func NewBanSubstrings(substrings []string) *BanSubstrings {
	lowered := make([]string, len(substrings))
	for i, sub := range substrings {
		lowered[i] = strings.ToLower(sub)
	}
	return &BanSubstrings{substrings: lowered}
}

func (s *BanSubstrings) Name() string { return "BanSubstrings" }

func (s *BanSubstrings) Scan(text string) (Verdict, error) {
	lowered := strings.ToLower(text)
	for _, sub := range s.substrings {
		if strings.Contains(lowered, sub) {
			return Verdict{Sanitized: text, Valid: false, Risk: 1}, nil
		}
	}
	return Verdict{Sanitized: text, Valid: true}, nil
}

// InputToxicity vetoes input whose toxicity score exceeds the threshold.
type InputToxicity struct {
	threshold float64
}

// NewInputToxicity creates the scanner. A non-positive threshold falls back
// to 0.5.
func NewInputToxicity(threshold float64) *InputToxicity {
	if threshold <= 0 {
		threshold = 0.5
	}
	return &InputToxicity{threshold: threshold}
}

func (s *InputToxicity) Name() string { return "Toxicity" }

func (s *InputToxicity) Scan(text string) (Verdict, error) {
	score := toxicityScore(text)
	if score >= s.threshold {
		return Verdict{Sanitized: text, Valid: false, Risk: score}, nil
	}
	return Verdict{Sanitized: text, Valid: true, Risk: score}, nil
}

// emailPattern matches embedded email-like strings.
const emailPattern = `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,7}\b`

// Regex vetoes input matching any of a configurable set of patterns.
// The default pattern rejects embedded email addresses.
type Regex struct {
	patterns []*regexp.Regexp
}

// NewRegex creates the scanner from pattern strings. An empty list uses the
// default email pattern.
func NewRegex(patterns []string) (*Regex, error) {
	if len(patterns) == 0 {
		patterns = []string{emailPattern}
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, raw := range patterns {
		p, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid regex scanner pattern %q: %w", raw, err)
		}
		compiled = append(compiled, p)
	}
	return &Regex{patterns: compiled}, nil
}

func (s *Regex) Name() string { return "Regex" }

func (s *Regex) Scan(text string) (Verdict, error) {
	for _, p := range s.patterns {
		if p.MatchString(text) {
			return Verdict{Sanitized: text, Valid: false, Risk: 1}, nil
		}
	}
	return Verdict{Sanitized: text, Valid: true}, nil
}

// Language vetoes input not written in one of the allowed languages.
// Detection uses lingua against a fixed candidate set; very short inputs
// carry too little signal and pass unchecked.
type Language struct {
	detector lingua.LanguageDetector
	allowed  map[lingua.Language]struct{}
}

// minLanguageRunes is the shortest input worth running detection on.
const minLanguageRunes = 20

var languageCodes = map[string]lingua.Language{
	"en": lingua.English,
	"es": lingua.Spanish,
	"fr": lingua.French,
	"de": lingua.German,
	"it": lingua.Italian,
	"pt": lingua.Portuguese,
	"ru": lingua.Russian,
	"zh": lingua.Chinese,
	"ja": lingua.Japanese,
	"ar": lingua.Arabic,
}

// NewLanguage creates the scanner. allowed holds ISO 639-1 codes; an empty
// list defaults to English only.
func NewLanguage(allowed []string) (*Language, error) {
	if len(allowed) == 0 {
		allowed = []string{"en"}
	}

	allowedSet := make(map[lingua.Language]struct{}, len(allowed))
	for _, code := range allowed {
		lang, ok := languageCodes[strings.ToLower(code)]
		if !ok {
			return nil, fmt.Errorf("unsupported language code %q", code)
		}
		allowedSet[lang] = struct{}{}
	}

	candidates := make([]lingua.Language, 0, len(languageCodes))
	for _, lang := range languageCodes {
		candidates = append(candidates, lang)
	}
	detector := lingua.NewLanguageDetectorBuilder().FromLanguages(candidates...).Build()

	return &Language{detector: detector, allowed: allowedSet}, nil
}

func (s *Language) Name() string { return "Language" }

func (s *Language) Scan(text string) (Verdict, error) {
	if len([]rune(strings.TrimSpace(text))) < minLanguageRunes {
		return Verdict{Sanitized: text, Valid: true}, nil
	}
	detected, exists := s.detector.DetectLanguageOf(text)
	if !exists {
		return Verdict{Sanitized: text, Valid: true}, nil
	}
	if _, ok := s.allowed[detected]; !ok {
		return Verdict{Sanitized: text, Valid: false, Risk: 1}, nil
	}
	return Verdict{Sanitized: text, Valid: true}, nil
}
