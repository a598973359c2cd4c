package analytics

import (
	"sort"
	"time"

	"github.com/venuepulse/sentiment-engine/internal/models"
)

const topEntityLimit = 10

// Summary computes the overall analytics summary over the full mention
// set. dataQuality carries the most recent run's quality score when one
// exists. An empty mention set yields a valid zero-valued summary.
func Summary(mentions []models.Mention, dataQuality *float64, now time.Time) models.AnalyticsSummary {
	distribution := map[string]int{
		models.LabelPositive: 0,
		models.LabelNegative: 0,
		models.LabelNeutral:  0,
	}

	type acc struct {
		mentions     int
		sentimentSum float64
	}
	perEntity := make(map[string]*acc)

	var sentimentSum float64
	for _, m := range mentions {
		distribution[m.Sentiment.Label]++
		sentimentSum += m.Sentiment.Score

		a, ok := perEntity[m.EntityName]
		if !ok {
			a = &acc{}
			perEntity[m.EntityName] = a
		}
		a.mentions++
		a.sentimentSum += m.Sentiment.Score
	}

	avgSentiment := 0.0
	if len(mentions) > 0 {
		avgSentiment = sentimentSum / float64(len(mentions))
	}

	top := make([]models.EntityHighlight, 0, len(perEntity))
	for name, a := range perEntity {
		top = append(top, models.EntityHighlight{
			Name:      name,
			Mentions:  a.mentions,
			Sentiment: a.sentimentSum / float64(a.mentions),
		})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Mentions != top[j].Mentions {
			return top[i].Mentions > top[j].Mentions
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > topEntityLimit {
		top = top[:topEntityLimit]
	}

	return models.AnalyticsSummary{
		TotalMentions:         len(mentions),
		UniqueEntities:        len(perEntity),
		AvgSentimentScore:     avgSentiment,
		SentimentDistribution: distribution,
		TopEntities:           top,
		DataQualityScore:      dataQuality,
		AnalysisDate:          now,
	}
}
