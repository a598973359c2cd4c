package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconAdapterPolarity(t *testing.T) {
	adapter := NewLexiconAdapter()

	testCases := []struct {
		name     string
		text     string
		wantSign int // -1, 0, +1
	}{
		{"clearly positive", "The wings were amazing and the service was friendly and quick", +1},
		{"clearly negative", "Terrible service, the food was cold and the staff rude", -1},
		{"no polarity terms", "We went there on a Tuesday around eight", 0},
		{"mixed leaning positive", "Great beer, great patio, slow kitchen", +1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := adapter.Score(context.Background(), tc.text)
			require.True(t, outcome.OK())
			switch tc.wantSign {
			case +1:
				assert.Greater(t, outcome.Score, 0.0)
			case -1:
				assert.Less(t, outcome.Score, 0.0)
			default:
				assert.Zero(t, outcome.Score)
			}
			assert.GreaterOrEqual(t, outcome.Confidence, 0.0)
			assert.LessOrEqual(t, outcome.Confidence, 1.0)
		})
	}
}

func TestLexiconConfidenceGrowsWithEvidence(t *testing.T) {
	adapter := NewLexiconAdapter()

	weak := adapter.Score(context.Background(), "good")
	strong := adapter.Score(context.Background(), "good great amazing excellent delicious")

	require.True(t, weak.OK())
	require.True(t, strong.OK())
	assert.Greater(t, strong.Confidence, weak.Confidence)
}

func TestIntensityEmitsEmotions(t *testing.T) {
	adapter := NewIntensityAdapter()

	outcome := adapter.Score(context.Background(), "I was so happy, we loved it! :)")
	require.True(t, outcome.OK())
	require.NotNil(t, outcome.Emotions)
	assert.Greater(t, outcome.Emotions["joy"], 0.0)
	assert.Greater(t, outcome.Score, 0.0)
}

func TestIntensityNoCues(t *testing.T) {
	adapter := NewIntensityAdapter()

	outcome := adapter.Score(context.Background(), "the room was beige")
	require.True(t, outcome.OK())
	assert.Zero(t, outcome.Score)
	assert.Nil(t, outcome.Emotions)
}

func TestAdaptersAreDeterministic(t *testing.T) {
	text := "Amazing wings but RUDE staff :( we waited forever"
	lex := NewLexiconAdapter()
	intensity := NewIntensityAdapter()

	first := lex.Score(context.Background(), text)
	second := lex.Score(context.Background(), text)
	assert.Equal(t, first, second)

	firstI := intensity.Score(context.Background(), text)
	secondI := intensity.Score(context.Background(), text)
	assert.Equal(t, firstI, secondI)
}
