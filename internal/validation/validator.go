package validation

import (
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/venuepulse/sentiment-engine/internal/config"
)

// RejectionReason identifies why a raw text was screened out.
type RejectionReason string

const (
	ReasonTooShort     RejectionReason = "too_short"
	ReasonTooLong      RejectionReason = "too_long"
	ReasonSpam         RejectionReason = "spam"
	ReasonDuplicate    RejectionReason = "duplicate"
	ReasonLowRelevance RejectionReason = "low_relevance"
)

// Metadata carries the minimal per-item context the validator needs
// beyond the text itself.
type Metadata struct {
	SourceType    string
	AuthorFlagged bool // author is a known spammer
}

// Verdict is the validator's decision for one raw text.
type Verdict struct {
	Accepted       bool
	Reasons        []RejectionReason
	RelevanceScore float64
}

// Spam reports whether the verdict includes a spam rejection.
func (v Verdict) Spam() bool {
	for _, r := range v.Reasons {
		if r == ReasonSpam {
			return true
		}
	}
	return false
}

// Promotional phrases that mark review spam. Two or more hits reject.
var promoPatterns = []string{
	"promo code", "discount code", "click here", "visit our",
	"buy now", "limited time", "follow us", "dm for",
}

// Six or more of the same character in a row. (Go's regexp engine has
// no backreferences, so `(.)\1{5,}` is expressed as a direct scan.)
func hasRepeatedRun(text string) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run >= 6 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// Keywords that make a text relevant to venue discussion, independent
// of a direct venue-name hit.
var venueKeywords = map[string]struct{}{
	"restaurant": {}, "bar": {}, "pub": {}, "brewery": {}, "cafe": {},
	"food": {}, "drink": {}, "drinks": {}, "beer": {}, "wine": {},
	"cocktail": {}, "menu": {}, "service": {}, "server": {}, "waiter": {},
	"dinner": {}, "lunch": {}, "brunch": {}, "eat": {}, "ate": {},
	"meal": {}, "taste": {}, "flavor": {}, "atmosphere": {},
	"ambiance": {}, "patio": {}, "reservation": {}, "kitchen": {},
}

// Validator screens raw mention text before it reaches scoring. The
// policy is deterministic for a given validator instance and input
// sequence; the duplicate check remembers a bounded window of recently
// seen texts.
type Validator struct {
	minLength         int
	maxLength         int
	relevanceFloor    float64
	maxUppercaseRatio float64

	entityTerms []string

	mu         sync.Mutex
	seen       map[uint64]struct{}
	seenOrder  []uint64
	seenWindow int
}

// New creates a validator for the configured entity list and thresholds.
func New(cfg *config.Config) *Validator {
	terms := make([]string, 0, len(cfg.EntityNames))
	for _, name := range cfg.EntityNames {
		terms = append(terms, normalize(name))
	}

	window := cfg.DuplicateWindow
	if window < 1 {
		window = 1
	}

	return &Validator{
		minLength:         cfg.MinTextLength,
		maxLength:         cfg.MaxTextLength,
		relevanceFloor:    cfg.RelevanceFloor,
		maxUppercaseRatio: cfg.MaxUppercaseRatio,
		entityTerms:       terms,
		seen:              make(map[uint64]struct{}, window),
		seenWindow:        window,
	}
}

// Validate screens one raw text. Every applicable rejection reason is
// reported; the relevance score is always computed.
func (v *Validator) Validate(text string, meta Metadata) Verdict {
	var reasons []RejectionReason

	if len(text) < v.minLength {
		reasons = append(reasons, ReasonTooShort)
	}
	if len(text) > v.maxLength {
		reasons = append(reasons, ReasonTooLong)
	}

	if v.isSpam(text, meta) {
		reasons = append(reasons, ReasonSpam)
	}

	if v.isDuplicate(text) {
		reasons = append(reasons, ReasonDuplicate)
	}

	relevance := v.relevance(text)
	if relevance < v.relevanceFloor {
		reasons = append(reasons, ReasonLowRelevance)
	}

	return Verdict{
		Accepted:       len(reasons) == 0,
		Reasons:        reasons,
		RelevanceScore: relevance,
	}
}

func (v *Validator) isSpam(text string, meta Metadata) bool {
	if meta.AuthorFlagged {
		return true
	}

	lower := strings.ToLower(text)
	promoHits := 0
	for _, pattern := range promoPatterns {
		if strings.Contains(lower, pattern) {
			promoHits++
		}
	}
	if promoHits >= 2 {
		return true
	}

	if hasRepeatedRun(text) {
		return true
	}

	if len(text) > 10 && uppercaseRatio(text) > v.maxUppercaseRatio {
		return true
	}

	return false
}

// isDuplicate records the normalized text hash and reports whether it
// was already seen within the window.
func (v *Validator) isDuplicate(text string) bool {
	h := fnv.New64a()
	h.Write([]byte(normalize(text)))
	key := h.Sum64()

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[key]; ok {
		return true
	}

	v.seen[key] = struct{}{}
	v.seenOrder = append(v.seenOrder, key)
	if len(v.seenOrder) > v.seenWindow {
		oldest := v.seenOrder[0]
		v.seenOrder = v.seenOrder[1:]
		delete(v.seen, oldest)
	}
	return false
}

// relevance is the lexical overlap between the text and the configured
// venue names plus general venue vocabulary, relative to text length.
// Venue-name hits count double.
func (v *Validator) relevance(text string) float64 {
	normalized := normalize(text)
	words := strings.Fields(normalized)
	if len(words) == 0 {
		return 0
	}

	matches := 0
	for _, word := range words {
		if _, ok := venueKeywords[word]; ok {
			matches++
		}
	}
	for _, term := range v.entityTerms {
		if term != "" && strings.Contains(normalized, term) {
			matches += 2
		}
	}

	relevance := float64(matches) / float64(len(words))
	if relevance > 1 {
		relevance = 1
	}
	return relevance
}

func uppercaseRatio(text string) float64 {
	total := 0
	upper := 0
	for _, r := range text {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}

// normalize lowercases and collapses non-alphanumeric runs to single
// spaces, so matching ignores punctuation differences.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
