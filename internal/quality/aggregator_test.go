package quality

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot(now, RunStats{
		TotalProcessed: 10,
		Accepted:       7,
		Rejected:       3,
		SpamFiltered:   1,
		ScoreErrors:    1,
		MentionsFound:  6,
		UniqueEntities: 2,
		ConfidenceSum:  4.2,
		ScoredCount:    6,
	})

	assert.Equal(t, now, snap.ProcessedAt)
	assert.Equal(t, 10, snap.TotalProcessed)
	assert.Equal(t, 7, snap.ValidCount)
	assert.Equal(t, 3, snap.InvalidCount)
	assert.Equal(t, 1, snap.SpamFilteredCount)
	assert.Equal(t, 6, snap.MentionsFound)
	assert.Equal(t, 2, snap.UniqueEntities)
	assert.InDelta(t, 0.7, snap.AverageConfidence, 1e-9)
	assert.GreaterOrEqual(t, snap.QualityScore, 0.0)
	assert.LessOrEqual(t, snap.QualityScore, 1.0)
}

func TestEmptyRunScoresZero(t *testing.T) {
	snap := Snapshot(time.Now(), RunStats{})
	assert.Zero(t, snap.QualityScore)
	assert.Zero(t, snap.AverageConfidence)
}

// Property: quality_score is non-decreasing in acceptance rate and
// average confidence, non-increasing in spam fraction.
func TestQualityScoreMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		total := 1 + rng.Intn(200)
		accepted := rng.Intn(total + 1)
		spam := rng.Intn(total - accepted + 1)
		scored := accepted
		confidence := rng.Float64()

		base := RunStats{
			TotalProcessed: total,
			Accepted:       accepted,
			Rejected:       total - accepted,
			SpamFiltered:   spam,
			ScoredCount:    scored,
			ConfidenceSum:  confidence * float64(scored),
		}
		baseScore := base.qualityScore()

		if accepted < total {
			moreAccepted := base
			moreAccepted.Accepted++
			moreAccepted.Rejected--
			assert.GreaterOrEqual(t, moreAccepted.qualityScore(), baseScore,
				"raising acceptance lowered quality (total=%d accepted=%d)", total, accepted)
		}

		if scored > 0 && confidence < 0.99 {
			moreConfident := base
			moreConfident.ConfidenceSum = (confidence + 0.01) * float64(scored)
			assert.GreaterOrEqual(t, moreConfident.qualityScore(), baseScore,
				"raising confidence lowered quality")
		}

		if spam < total-accepted {
			moreSpam := base
			moreSpam.SpamFiltered++
			assert.LessOrEqual(t, moreSpam.qualityScore(), baseScore,
				"raising spam fraction raised quality")
		}

		require.GreaterOrEqual(t, baseScore, 0.0)
		require.LessOrEqual(t, baseScore, 1.0)
	}
}

func TestHistoryRecentOrder(t *testing.T) {
	h := NewHistory()
	for day := 1; day <= 5; day++ {
		h.Append(Snapshot(time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC), RunStats{TotalProcessed: day}))
	}

	recent := h.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, 5, recent[0].TotalProcessed)
	assert.Equal(t, 4, recent[1].TotalProcessed)
	assert.Equal(t, 3, recent[2].TotalProcessed)

	all := h.Recent(0)
	assert.Len(t, all, 5)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 5, latest.TotalProcessed)
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory()
	assert.Empty(t, h.Recent(10))
	_, ok := h.Latest()
	assert.False(t, ok)
}
