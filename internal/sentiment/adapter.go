package sentiment

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies why a model call produced no usable score.
type FailureKind string

const (
	FailureUnavailable FailureKind = "unavailable"
	FailureTimeout     FailureKind = "timeout"
	FailureError       FailureKind = "error"
)

// ModelFailure is the failure arm of a ModelOutcome.
type ModelFailure struct {
	Kind FailureKind
	Err  error
}

func (f *ModelFailure) Error() string {
	return fmt.Sprintf("model failure (%s): %v", f.Kind, f.Err)
}

// ModelOutcome is the tagged result of a single model call: either a
// score/confidence pair (optionally with an emotion vector) or a typed
// failure. Exactly one arm is set.
type ModelOutcome struct {
	Model      string
	Score      float64
	Confidence float64
	Emotions   map[string]float64
	Failure    *ModelFailure
}

// OK reports whether the outcome carries a usable score.
func (o ModelOutcome) OK() bool {
	return o.Failure == nil
}

// Success builds a successful outcome.
func Success(model string, score, confidence float64) ModelOutcome {
	return ModelOutcome{Model: model, Score: score, Confidence: confidence}
}

// Failed builds a failure outcome.
func Failed(model string, kind FailureKind, err error) ModelOutcome {
	return ModelOutcome{Model: model, Failure: &ModelFailure{Kind: kind, Err: err}}
}

// ErrEnsembleExhausted is returned when every model failed for a mention.
var ErrEnsembleExhausted = errors.New("all sentiment models failed")

// ModelAdapter wraps one independent scoring model behind a uniform
// contract. Adapters must honor context cancellation; the ensemble also
// enforces a per-model timeout around every call.
type ModelAdapter interface {
	Name() string
	Score(ctx context.Context, text string) ModelOutcome
}
