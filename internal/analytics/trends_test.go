package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

func mention(entity string, createdAt time.Time, score, confidence float64) models.Mention {
	return models.Mention{
		ID:         entity + createdAt.String(),
		EntityName: entity,
		SourceID:   entity + createdAt.String(),
		CreatedAt:  createdAt,
		Sentiment: models.SentimentResult{
			Score:      score,
			Confidence: confidence,
			Label:      models.Label(score, 0.1, -0.1),
		},
	}
}

func TestBucketStart(t *testing.T) {
	// Wednesday 2025-06-18 15:30 UTC
	ts := time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), BucketStart(ts, GranularityDaily))
	// ISO week starts Monday 2025-06-16.
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), BucketStart(ts, GranularityWeekly))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), BucketStart(ts, GranularityMonthly))

	// Sunday belongs to the week of the preceding Monday.
	sunday := time.Date(2025, 6, 22, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), BucketStart(sunday, GranularityWeekly))
}

func TestTrendsBucketsAndMeans(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	mentions := []models.Mention{
		mention("X", time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC), 0.8, 0.9),
		mention("X", time.Date(2025, 6, 18, 21, 0, 0, 0, time.UTC), -0.4, 0.5),
		mention("X", time.Date(2025, 6, 19, 10, 0, 0, 0, time.UTC), 0.0, 0.7),
		mention("Y", time.Date(2025, 6, 18, 11, 0, 0, 0, time.UTC), 0.2, 0.6),
	}

	points, err := Trends(mentions, nil, 30, GranularityDaily, now)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// Sorted by bucket then entity: (18,X), (18,Y), (19,X).
	assert.Equal(t, "X", points[0].EntityName)
	assert.Equal(t, 2, points[0].MentionCount)
	assert.InDelta(t, 0.2, points[0].AvgSentiment, 1e-9)
	assert.InDelta(t, 0.7, points[0].AvgConfidence, 1e-9)
	assert.Equal(t, 1, points[0].PositiveCount)
	assert.Equal(t, 1, points[0].NegativeCount)
	assert.Equal(t, 0, points[0].NeutralCount)

	assert.Equal(t, "Y", points[1].EntityName)
	assert.Equal(t, "X", points[2].EntityName)
	assert.Equal(t, 1, points[2].NeutralCount)
}

func TestTrendsSparseBucketsOmitted(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	mentions := []models.Mention{
		mention("X", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), 0.5, 0.5),
		mention("X", time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC), 0.5, 0.5),
	}

	points, err := Trends(mentions, nil, 30, GranularityDaily, now)
	require.NoError(t, err)
	// Only the two days with data appear; no zero-filled gaps.
	assert.Len(t, points, 2)
}

func TestTrendsMentionCountConservation(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(7))

	var mentions []models.Mention
	inWindow := 0
	for i := 0; i < 300; i++ {
		daysAgo := rng.Intn(60)
		created := now.AddDate(0, 0, -daysAgo).Add(-time.Duration(rng.Intn(12)) * time.Hour)
		if !created.Before(now.AddDate(0, 0, -30)) {
			inWindow++
		}
		mentions = append(mentions, mention("X", created, rng.Float64()*2-1, rng.Float64()))
	}

	for _, granularity := range []string{GranularityDaily, GranularityWeekly, GranularityMonthly} {
		points, err := Trends(mentions, []string{"X"}, 30, granularity, now)
		require.NoError(t, err)

		total := 0
		for _, p := range points {
			total += p.MentionCount
		}
		assert.Equal(t, inWindow, total, "granularity %s", granularity)
	}
}

func TestTrendsDeterministicAcrossOrderings(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(99))

	var mentions []models.Mention
	entities := []string{"A", "B", "C"}
	for i := 0; i < 100; i++ {
		created := now.AddDate(0, 0, -rng.Intn(25))
		mentions = append(mentions, mention(entities[rng.Intn(3)], created, rng.Float64()*2-1, rng.Float64()))
	}

	first, err := Trends(mentions, nil, 30, GranularityWeekly, now)
	require.NoError(t, err)

	shuffled := make([]models.Mention, len(mentions))
	copy(shuffled, mentions)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	second, err := Trends(shuffled, nil, 30, GranularityWeekly, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Re-running on the unchanged set is idempotent.
	third, err := Trends(mentions, nil, 30, GranularityWeekly, now)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestTrendsEntityFilter(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	mentions := []models.Mention{
		mention("X", now.AddDate(0, 0, -1), 0.5, 0.5),
		mention("Y", now.AddDate(0, 0, -1), 0.5, 0.5),
	}

	points, err := Trends(mentions, []string{"X"}, 7, GranularityDaily, now)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "X", points[0].EntityName)
}

func TestTrendsInvalidParameters(t *testing.T) {
	_, err := Trends(nil, nil, 0, GranularityDaily, time.Now())
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = Trends(nil, nil, 7, "hourly", time.Now())
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestTrendsEmptyInputIsEmptyResult(t *testing.T) {
	points, err := Trends(nil, nil, 7, GranularityDaily, time.Now())
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestTrendReportSummaryStats(t *testing.T) {
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	mentions := []models.Mention{
		mention("X", now.AddDate(0, 0, -1), 0.6, 0.5),
		mention("Y", now.AddDate(0, 0, -2), -0.2, 0.5),
	}

	report, err := TrendReport(mentions, nil, 7, GranularityDaily, now)
	require.NoError(t, err)

	assert.Equal(t, 2, report.SummaryStats.TotalMentions)
	assert.InDelta(t, 0.2, report.SummaryStats.AverageSentiment, 1e-9)
	assert.Equal(t, 7, report.SummaryStats.PeriodDays)
	assert.Equal(t, 2, report.SummaryStats.EntitiesAnalyzed)
	assert.Equal(t, now, report.PeriodEnd)
}
