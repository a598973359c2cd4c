package sources

import (
	"context"
	"time"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

// Source yields raw content items for a processing run. The batch
// selector scopes the fetch to one batch (a calendar date or "all");
// items older than since are skipped.
type Source interface {
	GetName() string
	IsEnabled() bool
	FetchItems(ctx context.Context, selector string, since time.Time) ([]models.RawItem, error)
}
