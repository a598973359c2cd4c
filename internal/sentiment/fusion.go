package sentiment

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/venuepulse/sentiment-engine/internal/config"
	"github.com/venuepulse/sentiment-engine/internal/models"
)

// Ensemble fans a text out to every model adapter concurrently and fuses
// the surviving outcomes into one calibrated SentimentResult plus an
// optional EmotionProfile.
type Ensemble struct {
	adapters      []ModelAdapter
	weights       map[string]float64
	defaultWeight float64
	posCutoff     float64
	negCutoff     float64
	singleCap     float64
	timeout       time.Duration
}

// NewEnsemble creates an ensemble over the given adapters.
func NewEnsemble(cfg *config.Config, adapters ...ModelAdapter) *Ensemble {
	return &Ensemble{
		adapters:      adapters,
		weights:       cfg.ModelWeights,
		defaultWeight: cfg.DefaultModelWeight,
		posCutoff:     cfg.PositiveCutoff,
		negCutoff:     cfg.NegativeCutoff,
		singleCap:     cfg.SingleModelConfidenceCap,
		timeout:       cfg.ModelTimeout,
	}
}

// Analyze scores text with every adapter in parallel and fuses the
// results. It returns ErrEnsembleExhausted when no model survived.
func (e *Ensemble) Analyze(ctx context.Context, text string) (models.SentimentResult, models.EmotionProfile, error) {
	outcomes := e.scoreAll(ctx, text)

	var survived []ModelOutcome
	for _, outcome := range outcomes {
		if outcome.OK() {
			survived = append(survived, outcome)
			continue
		}
		logrus.Debugf("Model %s excluded from fusion: %v", outcome.Model, outcome.Failure)
	}

	if len(survived) == 0 {
		return models.SentimentResult{}, nil, ErrEnsembleExhausted
	}

	result := e.fuse(survived)
	return result, fuseEmotions(survived), nil
}

// scoreAll runs every adapter concurrently, each bounded by the
// per-model timeout. A slow adapter yields a timeout outcome; it never
// delays or fails the others.
func (e *Ensemble) scoreAll(ctx context.Context, text string) []ModelOutcome {
	outcomes := make([]ModelOutcome, len(e.adapters))
	var wg sync.WaitGroup

	for i, adapter := range e.adapters {
		wg.Add(1)
		go func(i int, adapter ModelAdapter) {
			defer wg.Done()
			outcomes[i] = e.scoreOne(ctx, adapter, text)
		}(i, adapter)
	}

	wg.Wait()
	return outcomes
}

func (e *Ensemble) scoreOne(ctx context.Context, adapter ModelAdapter, text string) ModelOutcome {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan ModelOutcome, 1)
	go func() {
		done <- adapter.Score(callCtx, text)
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-callCtx.Done():
		return Failed(adapter.Name(), FailureTimeout, callCtx.Err())
	}
}

// fuse combines the surviving outcomes.
//
// The fused score is the confidence-weighted average of per-model
// scores. The fused confidence is the reliability-weighted mean of the
// per-model confidences, discounted by the spread of opinions: the
// population variance of the scores (at most 1.0 for scores bounded in
// [-1,1]) scales the mean down, so disagreement mechanically lowers the
// reported confidence. A single surviving model reproduces its own
// score but has its confidence capped, since no cross-validation
// happened.
func (e *Ensemble) fuse(survived []ModelOutcome) models.SentimentResult {
	perModel := make(map[string]float64, len(survived))
	for _, o := range survived {
		perModel[o.Model] = o.Score
	}

	if len(survived) == 1 {
		only := survived[0]
		return models.SentimentResult{
			Score:          only.Score,
			Confidence:     math.Min(only.Confidence, e.singleCap),
			Label:          models.Label(only.Score, e.posCutoff, e.negCutoff),
			PerModelScores: perModel,
		}
	}

	var scoreSum, confSum float64
	for _, o := range survived {
		scoreSum += o.Score * o.Confidence
		confSum += o.Confidence
	}

	var fusedScore float64
	if confSum > 0 {
		fusedScore = scoreSum / confSum
	}

	confidence := e.reliabilityWeightedMean(survived) * (1 - normalizedVariance(survived))
	confidence = clamp01(confidence)

	return models.SentimentResult{
		Score:          clamp(fusedScore, -1, 1),
		Confidence:     confidence,
		Label:          models.Label(fusedScore, e.posCutoff, e.negCutoff),
		PerModelScores: perModel,
	}
}

func (e *Ensemble) reliabilityWeightedMean(survived []ModelOutcome) float64 {
	var weighted, total float64
	for _, o := range survived {
		w, ok := e.weights[o.Model]
		if !ok {
			w = e.defaultWeight
		}
		weighted += o.Confidence * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// normalizedVariance is the population variance of the per-model scores
// clamped to [0,1]. Scores live in [-1,1]; a variance of 1.0 already
// means maximal disagreement.
func normalizedVariance(survived []ModelOutcome) float64 {
	n := float64(len(survived))
	var mean float64
	for _, o := range survived {
		mean += o.Score
	}
	mean /= n

	var variance float64
	for _, o := range survived {
		d := o.Score - mean
		variance += d * d
	}
	variance /= n

	return clamp01(variance)
}

// fuseEmotions averages emotion vectors across the models that emitted
// one. Returns nil when no model did.
func fuseEmotions(survived []ModelOutcome) models.EmotionProfile {
	sums := make(map[string]float64)
	emitters := 0
	for _, o := range survived {
		if len(o.Emotions) == 0 {
			continue
		}
		emitters++
		for emotion, intensity := range o.Emotions {
			sums[emotion] += intensity
		}
	}

	if emitters == 0 {
		return nil
	}

	profile := make(models.EmotionProfile, len(sums))
	for emotion, sum := range sums {
		profile[emotion] = clamp01(sum / float64(emitters))
	}
	return profile
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
