package sentiment

import (
	"context"
	"strings"
	"unicode"
)

// Hospitality-domain polarity terms. Derived from common review
// vocabulary for venues (food, drink, service, atmosphere).
var (
	positiveTerms = map[string]struct{}{
		"amazing": {}, "excellent": {}, "outstanding": {}, "delicious": {},
		"fantastic": {}, "love": {}, "loved": {}, "perfect": {}, "incredible": {},
		"awesome": {}, "best": {}, "great": {}, "wonderful": {}, "impressive": {},
		"tasty": {}, "fresh": {}, "friendly": {}, "attentive": {}, "quick": {},
		"fast": {}, "clean": {}, "cozy": {}, "good": {}, "helpful": {},
		"recommend": {}, "favourite": {}, "favorite": {}, "solid": {},
	}

	negativeTerms = map[string]struct{}{
		"terrible": {}, "awful": {}, "horrible": {}, "disgusting": {},
		"worst": {}, "hate": {}, "hated": {}, "slow": {}, "rude": {},
		"dirty": {}, "expensive": {}, "overpriced": {}, "cold": {},
		"burnt": {}, "stale": {}, "soggy": {}, "bland": {}, "salty": {},
		"dry": {}, "greasy": {}, "waiting": {}, "wait": {}, "delayed": {},
		"mistake": {}, "wrong": {}, "poor": {}, "bad": {}, "broken": {},
		"disappointing": {}, "disappointed": {}, "avoid": {},
	}
)

// LexiconAdapter scores text by counting domain polarity terms. It is the
// cheap, always-available member of the ensemble.
type LexiconAdapter struct{}

// NewLexiconAdapter creates the lexicon scorer.
func NewLexiconAdapter() *LexiconAdapter {
	return &LexiconAdapter{}
}

func (a *LexiconAdapter) Name() string {
	return "lexicon"
}

// Score counts positive and negative term hits. The score is the signed
// hit ratio; confidence grows with the number of hits and stays modest
// when the text carries no polarity vocabulary at all.
func (a *LexiconAdapter) Score(ctx context.Context, text string) ModelOutcome {
	if err := ctx.Err(); err != nil {
		return Failed(a.Name(), FailureTimeout, err)
	}

	positive, negative := 0, 0
	for _, token := range tokenize(text) {
		if _, ok := positiveTerms[token]; ok {
			positive++
			continue
		}
		if _, ok := negativeTerms[token]; ok {
			negative++
		}
	}

	hits := positive + negative
	if hits == 0 {
		return Success(a.Name(), 0, 0.25)
	}

	score := float64(positive-negative) / float64(hits)
	confidence := 0.4 + 0.08*float64(hits)
	if confidence > 0.9 {
		confidence = 0.9
	}

	return Success(a.Name(), score, confidence)
}

// tokenize lowercases and splits on non-alphanumeric runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
