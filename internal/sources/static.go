package sources

import (
	"context"
	"time"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

// StaticSource serves a fixed item set. Used for local development and
// by the pipeline tests.
type StaticSource struct {
	name  string
	items []models.RawItem
}

func NewStaticSource(name string, items []models.RawItem) *StaticSource {
	return &StaticSource{name: name, items: items}
}

func (s *StaticSource) GetName() string {
	return s.name
}

func (s *StaticSource) IsEnabled() bool {
	return true
}

func (s *StaticSource) FetchItems(_ context.Context, selector string, since time.Time) ([]models.RawItem, error) {
	var out []models.RawItem
	for _, item := range s.items {
		if selector != "" && selector != "all" && item.CreatedAt.UTC().Format("2006-01-02") != selector {
			continue
		}
		if !since.IsZero() && item.CreatedAt.Before(since) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
