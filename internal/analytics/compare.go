package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

// Comparison metrics.
const (
	MetricAvgSentiment  = "avg_sentiment"
	MetricTotalMentions = "total_mentions"
	MetricAvgConfidence = "avg_confidence"
	MetricPositiveCount = "positive_count"
	MetricNegativeCount = "negative_count"
	MetricNeutralCount  = "neutral_count"
)

// DefaultMetrics is used when a comparison request names none.
var DefaultMetrics = []string{MetricAvgSentiment, MetricTotalMentions, MetricAvgConfidence}

// averageMetrics need at least one qualifying mention to have a value;
// entities without mentions are excluded from them rather than scored
// as zero. Everything else is count-like and defaults to zero.
var averageMetrics = map[string]struct{}{
	MetricAvgSentiment:  {},
	MetricAvgConfidence: {},
}

var knownMetrics = map[string]struct{}{
	MetricAvgSentiment:  {},
	MetricTotalMentions: {},
	MetricAvgConfidence: {},
	MetricPositiveCount: {},
	MetricNegativeCount: {},
	MetricNeutralCount:  {},
}

type entityStats struct {
	mentions      int
	sentimentSum  float64
	confidenceSum float64
	positive      int
	negative      int
	neutral       int
}

// Compare computes the requested metrics for each entity over the
// trailing window and ranks the entities per metric. Rankings are
// descending by value with ties broken by entity name ascending, so a
// repeated request always produces the same order. Entities with no
// qualifying mentions rank last.
func Compare(mentions []models.Mention, entities, metrics []string, windowDays int, now time.Time) (models.ComparisonResult, error) {
	if len(entities) == 0 {
		return models.ComparisonResult{}, fmt.Errorf("%w: at least one entity is required", ErrInvalidParameters)
	}
	if windowDays <= 0 {
		return models.ComparisonResult{}, fmt.Errorf("%w: window must be positive, got %d", ErrInvalidParameters, windowDays)
	}
	if len(metrics) == 0 {
		metrics = DefaultMetrics
	}
	for _, metric := range metrics {
		if _, ok := knownMetrics[metric]; !ok {
			return models.ComparisonResult{}, fmt.Errorf("%w: unknown metric %q", ErrInvalidParameters, metric)
		}
	}

	entities = dedupeSorted(entities)

	stats := make(map[string]*entityStats, len(entities))
	for _, entity := range entities {
		stats[entity] = &entityStats{}
	}

	since := now.AddDate(0, 0, -windowDays)
	for _, m := range mentions {
		s, ok := stats[m.EntityName]
		if !ok || m.CreatedAt.Before(since) || m.CreatedAt.After(now) {
			continue
		}
		s.mentions++
		s.sentimentSum += m.Sentiment.Score
		s.confidenceSum += m.Sentiment.Confidence
		switch m.Sentiment.Label {
		case models.LabelPositive:
			s.positive++
		case models.LabelNegative:
			s.negative++
		default:
			s.neutral++
		}
	}

	values := make(map[string]map[string]float64, len(entities))
	for _, entity := range entities {
		values[entity] = make(map[string]float64, len(metrics))
		for _, metric := range metrics {
			if v, ok := metricValue(stats[entity], metric); ok {
				values[entity][metric] = v
			}
		}
	}

	rankings := make(map[string][]string, len(metrics))
	for _, metric := range metrics {
		rankings[metric] = rank(entities, values, metric)
	}

	return models.ComparisonResult{
		Entities:        entities,
		Metrics:         metrics,
		WindowDays:      windowDays,
		PerEntityValues: values,
		Rankings:        rankings,
	}, nil
}

// metricValue computes one metric for one entity. The second return is
// false when the metric is average-like and the entity had no mentions.
func metricValue(s *entityStats, metric string) (float64, bool) {
	if _, averageLike := averageMetrics[metric]; averageLike && s.mentions == 0 {
		return 0, false
	}

	switch metric {
	case MetricAvgSentiment:
		return s.sentimentSum / float64(s.mentions), true
	case MetricAvgConfidence:
		return s.confidenceSum / float64(s.mentions), true
	case MetricTotalMentions:
		return float64(s.mentions), true
	case MetricPositiveCount:
		return float64(s.positive), true
	case MetricNegativeCount:
		return float64(s.negative), true
	case MetricNeutralCount:
		return float64(s.neutral), true
	default:
		return 0, false
	}
}

// rank orders all requested entities for one metric: entities with a
// value descending by it, name-ascending on ties; entities without a
// value (average metrics with zero mentions) come last, name-ascending.
func rank(entities []string, values map[string]map[string]float64, metric string) []string {
	var scored, unscored []string
	for _, entity := range entities {
		if _, ok := values[entity][metric]; ok {
			scored = append(scored, entity)
		} else {
			unscored = append(unscored, entity)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		vi, vj := values[scored[i]][metric], values[scored[j]][metric]
		if vi != vj {
			return vi > vj
		}
		return scored[i] < scored[j]
	})
	sort.Strings(unscored)

	return append(scored, unscored...)
}

func dedupeSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
