package guard

import (
	"regexp"
	"strings"
)

// toxicLexicon maps hostile terms to weights. Scoring is additive per
// sentence and capped at 1. A lexicon is crude next to a classifier model,
// but it is deterministic and dependency-free, and the chain treats the
// scanner as replaceable configuration either way.
var toxicLexicon = map[string]float64{
	"idiot":      0.6,
	"idiots":     0.6,
	"moron":      0.6,
	"stupid":     0.5,
	"dumb":       0.4,
	"hate":       0.4,
	"despise":    0.4,
	"kill":       0.7,
	"die":        0.5,
	"worthless":  0.6,
	"pathetic":   0.5,
	"disgusting": 0.5,
	"trash":      0.35,
	"garbage":    0.35,
	"loser":      0.45,
	"losers":     0.45,
	"shut up":    0.5,
	"screw you":  0.7,
}

var sentenceSplit = regexp.MustCompile(`[.!?]+\s*`)
var wordSplit = regexp.MustCompile(`[^a-z']+`)

// toxicityScore returns the maximum per-sentence toxicity in [0, 1].
// Sentence-level matching keeps one hostile sentence from being diluted by
// an otherwise long, harmless text.
func toxicityScore(text string) float64 {
	var worst float64
	for _, sentence := range sentenceSplit.Split(strings.ToLower(text), -1) {
		if sentence == "" {
			continue
		}
		var score float64
		for term, weight := range toxicLexicon {
			if strings.Contains(term, " ") {
				if strings.Contains(sentence, term) {
					score += weight
				}
				continue
			}
			for _, word := range wordSplit.Split(sentence, -1) {
				if word == term {
					score += weight
					break
				}
			}
		}
		if score > 1 {
			score = 1
		}
		if score > worst {
			worst = score
		}
	}
	return worst
}
