package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

// ErrInvalidParameters rejects a read request before any work starts.
var ErrInvalidParameters = errors.New("invalid parameters")

// Trend granularities.
const (
	GranularityDaily   = "daily"
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"
)

// BucketStart truncates t (in UTC) to its bucket boundary: calendar day,
// ISO week start (Monday) or first of the month.
func BucketStart(t time.Time, granularity string) time.Time {
	t = t.UTC()
	switch granularity {
	case GranularityWeekly:
		day := t.Weekday()
		// time.Weekday has Sunday == 0; ISO weeks start on Monday.
		offset := (int(day) + 6) % 7
		t = t.AddDate(0, 0, -offset)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case GranularityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default: // daily
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Trends buckets the given mentions by (entity, bucket start) within the
// trailing window. Buckets with no mentions are omitted. The output is
// sorted by bucket start then entity name, so identical inputs always
// produce identical output regardless of mention order.
func Trends(mentions []models.Mention, entities []string, windowDays int, granularity string, now time.Time) ([]models.TrendPoint, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", ErrInvalidParameters, windowDays)
	}
	switch granularity {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
	default:
		return nil, fmt.Errorf("%w: unknown granularity %q", ErrInvalidParameters, granularity)
	}

	wanted := toSet(entities)
	since := now.AddDate(0, 0, -windowDays)

	type key struct {
		entity string
		bucket time.Time
	}
	buckets := make(map[key]*models.TrendPoint)

	for _, m := range mentions {
		if m.CreatedAt.Before(since) || m.CreatedAt.After(now) {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[m.EntityName]; !ok {
				continue
			}
		}

		k := key{entity: m.EntityName, bucket: BucketStart(m.CreatedAt, granularity)}
		point, ok := buckets[k]
		if !ok {
			point = &models.TrendPoint{
				EntityName:  k.entity,
				BucketStart: k.bucket,
				Granularity: granularity,
			}
			buckets[k] = point
		}

		point.MentionCount++
		point.AvgSentiment += m.Sentiment.Score
		point.AvgConfidence += m.Sentiment.Confidence
		switch m.Sentiment.Label {
		case models.LabelPositive:
			point.PositiveCount++
		case models.LabelNegative:
			point.NegativeCount++
		default:
			point.NeutralCount++
		}
	}

	points := make([]models.TrendPoint, 0, len(buckets))
	for _, point := range buckets {
		n := float64(point.MentionCount)
		point.AvgSentiment /= n
		point.AvgConfidence /= n
		points = append(points, *point)
	}

	sort.Slice(points, func(i, j int) bool {
		if !points[i].BucketStart.Equal(points[j].BucketStart) {
			return points[i].BucketStart.Before(points[j].BucketStart)
		}
		return points[i].EntityName < points[j].EntityName
	})

	return points, nil
}

// TrendReport wraps Trends with the period metadata and summary stats
// the read surface exposes.
func TrendReport(mentions []models.Mention, entities []string, windowDays int, granularity string, now time.Time) (models.TrendReport, error) {
	points, err := Trends(mentions, entities, windowDays, granularity, now)
	if err != nil {
		return models.TrendReport{}, err
	}

	total := 0
	var sentimentSum float64
	seen := make(map[string]struct{})
	for _, p := range points {
		total += p.MentionCount
		sentimentSum += p.AvgSentiment * float64(p.MentionCount)
		seen[p.EntityName] = struct{}{}
	}

	avg := 0.0
	if total > 0 {
		avg = sentimentSum / float64(total)
	}

	return models.TrendReport{
		PeriodStart: now.AddDate(0, 0, -windowDays),
		PeriodEnd:   now,
		Granularity: granularity,
		Trends:      points,
		SummaryStats: models.TrendSummaryStats{
			TotalMentions:    total,
			AverageSentiment: avg,
			PeriodDays:       windowDays,
			EntitiesAnalyzed: len(seen),
		},
	}, nil
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
