package sentiment

import (
	"context"
	"strings"
	"unicode"
)

// Emotion vocabulary used by the intensity adapter. Each term votes for
// one emotion.
var emotionTerms = map[string]string{
	"love": "joy", "loved": "joy", "happy": "joy", "delighted": "joy",
	"enjoy": "joy", "enjoyed": "joy", "fun": "joy", "celebrate": "joy",

	"angry": "anger", "furious": "anger", "rude": "anger", "outraged": "anger",
	"annoyed": "anger", "infuriating": "anger", "ripoff": "anger",

	"sad": "sadness", "disappointed": "sadness", "disappointing": "sadness",
	"miss": "sadness", "closed": "sadness", "unfortunately": "sadness",

	"scared": "fear", "afraid": "fear", "worried": "fear", "sketchy": "fear",
	"unsafe": "fear",

	"wow": "surprise", "unexpected": "surprise", "surprised": "surprise",
	"unbelievable": "surprise", "shocked": "surprise",

	"gross": "disgust", "disgusting": "disgust", "filthy": "disgust",
	"nasty": "disgust", "stale": "disgust",
}

// emphasis markers that amplify whatever polarity is present
var positiveMarks = []string{":)", ":-)", "!", "<3", "😊", "😍", "🎉"}
var negativeMarks = []string{":(", ":-(", "😠", "😡", "🤮", "👎"}

// IntensityAdapter scores emphasis cues (punctuation, emoticons,
// capitalized words) and is the only local model that also emits an
// emotion vector.
type IntensityAdapter struct{}

// NewIntensityAdapter creates the intensity scorer.
func NewIntensityAdapter() *IntensityAdapter {
	return &IntensityAdapter{}
}

func (a *IntensityAdapter) Name() string {
	return "intensity"
}

func (a *IntensityAdapter) Score(ctx context.Context, text string) ModelOutcome {
	if err := ctx.Err(); err != nil {
		return Failed(a.Name(), FailureTimeout, err)
	}

	positive, negative := 0, 0
	for _, mark := range positiveMarks {
		positive += strings.Count(text, mark)
	}
	for _, mark := range negativeMarks {
		negative += strings.Count(text, mark)
	}

	emotions := make(map[string]float64)
	emotionHits := 0
	tokens := tokenize(text)
	for _, token := range tokens {
		if emotion, ok := emotionTerms[token]; ok {
			emotions[emotion]++
			emotionHits++
		}
	}

	// Shouted words lean negative in review text unless paired with
	// positive emphasis.
	if shoutRatio(text) > 0.4 && positive == 0 {
		negative++
	}

	cues := positive + negative
	outcome := ModelOutcome{Model: a.Name(), Score: 0, Confidence: 0.2}
	if cues > 0 {
		outcome.Score = float64(positive-negative) / float64(cues)
		outcome.Confidence = 0.3 + 0.05*float64(cues)
		if outcome.Confidence > 0.8 {
			outcome.Confidence = 0.8
		}
	}

	if emotionHits > 0 {
		for emotion, count := range emotions {
			emotions[emotion] = count / float64(emotionHits+1)
		}
		outcome.Emotions = emotions
	}

	return outcome
}

// shoutRatio is the fraction of uppercase letters among all letters.
func shoutRatio(text string) float64 {
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < 10 {
		return 0
	}
	return float64(upper) / float64(letters)
}
