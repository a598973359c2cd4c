package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// RemoteAdapter calls an HTTP inference endpoint (a transformer model
// served elsewhere). Calls are rate limited; network failures,
// non-success responses and deadline hits map onto the typed failure
// kinds so the ensemble can proceed without this model.
type RemoteAdapter struct {
	url     string
	client  *resty.Client
	limiter *rate.Limiter
}

type remoteScoreRequest struct {
	Text string `json:"text"`
}

type remoteScoreResponse struct {
	Score      float64            `json:"score"`
	Confidence float64            `json:"confidence"`
	Emotions   map[string]float64 `json:"emotions,omitempty"`
}

// NewRemoteAdapter creates a remote model adapter for the given endpoint.
func NewRemoteAdapter(url string, requestsPerSecond float64) *RemoteAdapter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &RemoteAdapter{
		url:     url,
		client:  resty.New().SetTimeout(30 * time.Second),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (a *RemoteAdapter) Name() string {
	return "remote"
}

// IsEnabled reports whether an endpoint is configured.
func (a *RemoteAdapter) IsEnabled() bool {
	return a.url != ""
}

func (a *RemoteAdapter) Score(ctx context.Context, text string) ModelOutcome {
	if !a.IsEnabled() {
		return Failed(a.Name(), FailureUnavailable, errors.New("remote model endpoint not configured"))
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return Failed(a.Name(), FailureTimeout, err)
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(remoteScoreRequest{Text: text}).
		Post(a.url)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Failed(a.Name(), FailureTimeout, err)
		}
		return Failed(a.Name(), FailureUnavailable, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return Failed(a.Name(), FailureError,
			fmt.Errorf("inference endpoint returned status %d", resp.StatusCode()))
	}

	var parsed remoteScoreResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return Failed(a.Name(), FailureError, fmt.Errorf("decoding inference response: %w", err))
	}

	if parsed.Score < -1 || parsed.Score > 1 || parsed.Confidence < 0 || parsed.Confidence > 1 {
		return Failed(a.Name(), FailureError,
			fmt.Errorf("inference response out of range (score=%f confidence=%f)", parsed.Score, parsed.Confidence))
	}

	outcome := Success(a.Name(), parsed.Score, parsed.Confidence)
	outcome.Emotions = parsed.Emotions
	return outcome
}
