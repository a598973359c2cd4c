package quality

import (
	"sync"
	"time"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

// Blend weights for the run quality score. Acceptance rate and average
// confidence raise the score, the spam fraction lowers it; the formula
// is monotone in each direction.
const (
	acceptanceWeight = 0.5
	confidenceWeight = 0.3
	spamWeight       = 0.2
)

// RunStats accumulates the per-batch counters the aggregator consumes.
type RunStats struct {
	TotalProcessed int
	Accepted       int
	Rejected       int
	SpamFiltered   int
	ScoreErrors    int
	MentionsFound  int
	UniqueEntities int
	ConfidenceSum  float64
	ScoredCount    int
}

// Snapshot rolls the run counters into one immutable snapshot.
func Snapshot(processedAt time.Time, stats RunStats) models.QualityMetricsSnapshot {
	return models.QualityMetricsSnapshot{
		ProcessedAt:       processedAt,
		TotalProcessed:    stats.TotalProcessed,
		ValidCount:        stats.Accepted,
		InvalidCount:      stats.Rejected,
		SpamFilteredCount: stats.SpamFiltered,
		ScoreErrorCount:   stats.ScoreErrors,
		MentionsFound:     stats.MentionsFound,
		UniqueEntities:    stats.UniqueEntities,
		AverageConfidence: stats.averageConfidence(),
		QualityScore:      stats.qualityScore(),
	}
}

func (s RunStats) averageConfidence() float64 {
	if s.ScoredCount == 0 {
		return 0
	}
	return s.ConfidenceSum / float64(s.ScoredCount)
}

// qualityScore blends acceptance rate, average confidence and a spam
// penalty into [0,1].
func (s RunStats) qualityScore() float64 {
	if s.TotalProcessed == 0 {
		return 0
	}

	acceptance := float64(s.Accepted) / float64(s.TotalProcessed)
	spamFraction := float64(s.SpamFiltered) / float64(s.TotalProcessed)

	score := acceptanceWeight*acceptance +
		confidenceWeight*s.averageConfidence() +
		spamWeight*(1-spamFraction)

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// History keeps completed-run snapshots in memory, most recent last.
// Snapshots are never mutated after being appended.
type History struct {
	mu    sync.RWMutex
	snaps []models.QualityMetricsSnapshot
}

// NewHistory creates an empty snapshot history.
func NewHistory() *History {
	return &History{}
}

// Append records a completed run's snapshot.
func (h *History) Append(snap models.QualityMetricsSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snaps = append(h.snaps, snap)
}

// Recent returns up to limit snapshots, most recent first.
func (h *History) Recent(limit int) []models.QualityMetricsSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > len(h.snaps) {
		limit = len(h.snaps)
	}

	out := make([]models.QualityMetricsSnapshot, 0, limit)
	for i := len(h.snaps) - 1; i >= len(h.snaps)-limit; i-- {
		out = append(out, h.snaps[i])
	}
	return out
}

// Latest returns the most recent snapshot, if any.
func (h *History) Latest() (models.QualityMetricsSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.snaps) == 0 {
		return models.QualityMetricsSnapshot{}, false
	}
	return h.snaps[len(h.snaps)-1], true
}
