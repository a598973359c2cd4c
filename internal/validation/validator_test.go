package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuepulse/sentiment-engine/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		EntityNames:       []string{"The Old Anchor", "Brewhouse 21"},
		MinTextLength:     10,
		MaxTextLength:     200,
		RelevanceFloor:    0.1,
		MaxUppercaseRatio: 0.5,
		DuplicateWindow:   4,
	}
}

func TestValidateRejectionReasons(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		meta       Metadata
		accepted   bool
		wantReason RejectionReason
	}{
		{
			name:     "relevant review accepted",
			text:     "Had dinner at The Old Anchor, great food and drinks on the patio",
			accepted: true,
		},
		{
			name:       "too short",
			text:       "meh",
			accepted:   false,
			wantReason: ReasonTooShort,
		},
		{
			name:       "promo spam",
			text:       "Use promo code BEER20 now, click here for drinks at the bar, limited time",
			accepted:   false,
			wantReason: ReasonSpam,
		},
		{
			name:       "repeated character run",
			text:       "the bar food was goooooooood drinks menu",
			accepted:   false,
			wantReason: ReasonSpam,
		},
		{
			name:       "shouted text",
			text:       "BEST BAR FOOD EVER COME DOWN NOW",
			accepted:   false,
			wantReason: ReasonSpam,
		},
		{
			name:       "flagged author",
			text:       "Honestly a lovely dinner at the bar with drinks",
			meta:       Metadata{AuthorFlagged: true},
			accepted:   false,
			wantReason: ReasonSpam,
		},
		{
			name:       "irrelevant text",
			text:       "My commute this morning took forty minutes because of the bridge closure again",
			accepted:   false,
			wantReason: ReasonLowRelevance,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := New(testConfig())
			verdict := v.Validate(tc.text, tc.meta)
			assert.Equal(t, tc.accepted, verdict.Accepted)
			if !tc.accepted {
				assert.Contains(t, verdict.Reasons, tc.wantReason)
			}
		})
	}
}

func TestValidateTooLong(t *testing.T) {
	v := New(testConfig())

	long := "food and drinks at the bar "
	for len(long) <= 200 {
		long += long
	}

	verdict := v.Validate(long, Metadata{})
	assert.False(t, verdict.Accepted)
	assert.Contains(t, verdict.Reasons, ReasonTooLong)
}

func TestDuplicateWithinWindow(t *testing.T) {
	v := New(testConfig())
	text := "Great drinks and food at Brewhouse 21, the service was quick"

	first := v.Validate(text, Metadata{})
	require.True(t, first.Accepted)

	// Same text again, even with different punctuation, is a duplicate.
	second := v.Validate("Great drinks and food at Brewhouse 21... the service was quick!", Metadata{})
	assert.False(t, second.Accepted)
	assert.Contains(t, second.Reasons, ReasonDuplicate)
}

func TestDuplicateWindowEvicts(t *testing.T) {
	v := New(testConfig())

	texts := []string{
		"Dinner at the bar was lovely, food one",
		"Dinner at the bar was lovely, food two",
		"Dinner at the bar was lovely, food three",
		"Dinner at the bar was lovely, food four",
		"Dinner at the bar was lovely, food five",
	}
	for _, text := range texts {
		v.Validate(text, Metadata{})
	}

	// The first text fell out of the 4-entry window, so it passes again.
	verdict := v.Validate(texts[0], Metadata{})
	assert.True(t, verdict.Accepted)
}

func TestRelevanceScoreBoundsAndEntityBoost(t *testing.T) {
	v := New(testConfig())

	plain := v.Validate("We grabbed food and drinks after work yesterday evening downtown", Metadata{})
	named := v.Validate("We grabbed food and drinks at The Old Anchor after work yesterday", Metadata{})

	assert.GreaterOrEqual(t, plain.RelevanceScore, 0.0)
	assert.LessOrEqual(t, plain.RelevanceScore, 1.0)
	assert.Greater(t, named.RelevanceScore, plain.RelevanceScore)
}

func TestValidateIsDeterministic(t *testing.T) {
	text := "Wings and beer at The Old Anchor, slow service though"

	a := New(testConfig()).Validate(text, Metadata{})
	b := New(testConfig()).Validate(text, Metadata{})
	assert.Equal(t, a, b)
}
