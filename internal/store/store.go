package store

import (
	"context"
	"time"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

// Filter narrows a mention query. Zero values mean "no constraint".
type Filter struct {
	Entities []string
	Since    time.Time
	Until    time.Time
}

// MentionStore persists scored mentions. Upsert is keyed on SourceID:
// reprocessing the same raw item replaces the stored record instead of
// duplicating it. Query results are sorted by creation time then source
// ID so repeated reads see the same order.
type MentionStore interface {
	Upsert(ctx context.Context, mention models.Mention) error
	Query(ctx context.Context, filter Filter) ([]models.Mention, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// matches reports whether a mention satisfies the filter.
func (f Filter) matches(m models.Mention) bool {
	if !f.Since.IsZero() && m.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && m.CreatedAt.After(f.Until) {
		return false
	}
	if len(f.Entities) == 0 {
		return true
	}
	for _, entity := range f.Entities {
		if m.EntityName == entity {
			return true
		}
	}
	return false
}
