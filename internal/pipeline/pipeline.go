package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venuepulse/sentiment-engine/internal/config"
	"github.com/venuepulse/sentiment-engine/internal/models"
	"github.com/venuepulse/sentiment-engine/internal/sentiment"
	"github.com/venuepulse/sentiment-engine/internal/store"
	"github.com/venuepulse/sentiment-engine/internal/validation"
)

// Processing modes. Basic skips emotion attachment.
const (
	ModeBasic = "basic"
	ModeFull  = "full"
)

// ItemStatus is the outcome of processing one raw item.
type ItemStatus string

const (
	ItemAccepted    ItemStatus = "accepted"
	ItemRejected    ItemStatus = "rejected"
	ItemScoreFailed ItemStatus = "score_failed"
)

// ItemResult reports what happened to one raw item.
type ItemResult struct {
	SourceID string
	Status   ItemStatus
	Verdict  validation.Verdict
	Mention  *models.Mention
	Err      error
}

// Pipeline runs one raw item through validation, ensemble scoring and
// persistence. Safe for concurrent use.
type Pipeline struct {
	validator *validation.Validator
	ensemble  *sentiment.Ensemble
	mentions  store.MentionStore
}

func New(cfg *config.Config, mentions store.MentionStore, adapters ...sentiment.ModelAdapter) *Pipeline {
	return &Pipeline{
		validator: validation.New(cfg),
		ensemble:  sentiment.NewEnsemble(cfg, adapters...),
		mentions:  mentions,
	}
}

// ProcessItem validates, scores and persists one raw item. Rejected
// and score-failed items are reported, not persisted.
func (p *Pipeline) ProcessItem(ctx context.Context, item models.RawItem, mode string) ItemResult {
	verdict := p.validator.Validate(item.Text, validation.Metadata{
		SourceType:    item.SourceType,
		AuthorFlagged: item.AuthorFlagged,
	})
	if !verdict.Accepted {
		return ItemResult{SourceID: item.SourceID, Status: ItemRejected, Verdict: verdict}
	}

	result, emotions, err := p.ensemble.Analyze(ctx, item.Text)
	if err != nil {
		return ItemResult{
			SourceID: item.SourceID,
			Status:   ItemScoreFailed,
			Verdict:  verdict,
			Err:      err,
		}
	}

	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	mention := models.Mention{
		ID:         uuid.NewString(),
		EntityName: item.EntityHint,
		SourceID:   item.SourceID,
		Text:       item.Text,
		CreatedAt:  createdAt,
		Sentiment:  result,
		TopicTags:  extractTopics(item.Text),
		IsDerived:  item.IsDerived,
		SourceURL:  item.SourceURL,
	}
	if mode != ModeBasic {
		mention.Emotions = emotions
	}

	if err := p.mentions.Upsert(ctx, mention); err != nil {
		return ItemResult{
			SourceID: item.SourceID,
			Status:   ItemScoreFailed,
			Verdict:  verdict,
			Err:      fmt.Errorf("persisting mention: %w", err),
		}
	}

	return ItemResult{
		SourceID: item.SourceID,
		Status:   ItemAccepted,
		Verdict:  verdict,
		Mention:  &mention,
	}
}

// Topic vocabularies for the coarse tags attached to mentions.
var topicTerms = map[string][]string{
	"food":       {"food", "menu", "dish", "meal", "dinner", "lunch", "brunch", "taste", "kitchen", "appetizer"},
	"drinks":     {"drink", "drinks", "beer", "wine", "cocktail", "cocktails", "brew", "ale"},
	"service":    {"service", "staff", "server", "waiter", "waitress", "bartender", "host"},
	"atmosphere": {"atmosphere", "ambiance", "vibe", "music", "decor", "patio", "crowd"},
	"price":      {"price", "prices", "expensive", "cheap", "value", "overpriced", "affordable"},
}

// Topic iteration order, kept stable so tags are deterministic.
var topicOrder = []string{"food", "drinks", "service", "atmosphere", "price"}

func extractTopics(text string) []string {
	lowered := strings.ToLower(text)
	var tags []string
	for _, topic := range topicOrder {
		for _, term := range topicTerms[topic] {
			if strings.Contains(lowered, term) {
				tags = append(tags, topic)
				break
			}
		}
	}
	return tags
}
