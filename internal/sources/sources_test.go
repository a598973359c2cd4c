package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

func TestReviewFeedSourceFetch(t *testing.T) {
	var gotDate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDate = r.URL.Query().Get("date")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reviews": [
			{"id": "r1", "venue": "The Anchor Tavern", "text": "Great cocktails and friendly staff", "rating": 5, "created_at": "2025-06-20T10:00:00Z", "url": "https://reviews.example/r1", "source_type": "review"},
			{"id": "r2", "venue": "Anchor", "text": "", "rating": 2, "created_at": "2025-06-20T11:00:00Z", "url": "https://reviews.example/r2", "source_type": "review"},
			{"id": "r3", "venue": "Unrelated Diner", "text": "Nice pancakes", "rating": 4, "created_at": "2025-06-20T12:00:00Z", "url": "https://reviews.example/r3", "source_type": "review"},
			{"id": "r4", "venue": "Anchor", "text": "Old review", "rating": 3, "created_at": "2025-01-01T00:00:00Z", "url": "https://reviews.example/r4", "source_type": "review"},
			{"id": "r5", "venue": "Anchor", "text": "Bad timestamp", "rating": 3, "created_at": "yesterday", "url": "https://reviews.example/r5", "source_type": "review"}
		]}`))
	}))
	defer server.Close()

	source := NewReviewFeedSource(server.URL, []string{"Anchor"})
	assert.True(t, source.IsEnabled())
	assert.Equal(t, "reviewfeed", source.GetName())

	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	items, err := source.FetchItems(context.Background(), "2025-06-20", since)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-20", gotDate)

	// r3 is untracked, r4 is before since, r5 is unparseable.
	require.Len(t, items, 2)

	assert.Equal(t, "reviewfeed_r1", items[0].SourceID)
	assert.Equal(t, "Anchor", items[0].EntityHint)
	assert.False(t, items[0].IsDerived)

	// Rating-only review gets synthesized derived text.
	assert.Equal(t, "reviewfeed_r2", items[1].SourceID)
	assert.True(t, items[1].IsDerived)
	assert.NotEmpty(t, items[1].Text)
}

func TestReviewFeedSourceDisabledWithoutURL(t *testing.T) {
	source := NewReviewFeedSource("", []string{"Anchor"})
	assert.False(t, source.IsEnabled())
}

func TestReviewFeedSourceServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewReviewFeedSource(server.URL, []string{"Anchor"})
	_, err := source.FetchItems(context.Background(), "all", time.Time{})
	assert.Error(t, err)
}

func TestStaticSourceSelector(t *testing.T) {
	day1 := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 21, 10, 0, 0, 0, time.UTC)
	source := NewStaticSource("static", []models.RawItem{
		{SourceID: "a", CreatedAt: day1},
		{SourceID: "b", CreatedAt: day2},
	})

	items, err := source.FetchItems(context.Background(), "2025-06-20", time.Time{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].SourceID)

	all, err := source.FetchItems(context.Background(), "all", time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
