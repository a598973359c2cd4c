package models

import "time"

// Sentiment labels derived from a fused score.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Label derives the sentiment label from a score using the configured
// cutoffs. Scores strictly above posCutoff are positive, strictly below
// negCutoff are negative, everything else is neutral. Every place that
// needs a label must go through this function.
func Label(score, posCutoff, negCutoff float64) string {
	switch {
	case score > posCutoff:
		return LabelPositive
	case score < negCutoff:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// SentimentResult is the fused output of the model ensemble for one text.
type SentimentResult struct {
	Score          float64            `json:"score"`
	Confidence     float64            `json:"confidence"`
	Label          string             `json:"label"`
	PerModelScores map[string]float64 `json:"per_model_scores,omitempty"`
}

// EmotionProfile maps emotion names to intensities in [0,1]. It is only
// present on a mention when at least one emotion-capable model succeeded.
type EmotionProfile map[string]float64

// Mention is a single scored text reference to a venue. Immutable once
// persisted except for re-scoring, which replaces the record wholesale.
// SourceID is unique: reprocessing the same raw item updates in place.
type Mention struct {
	ID         string          `json:"id"`
	EntityName string          `json:"entity_name"`
	SourceID   string          `json:"source_id"`
	Text       string          `json:"text"`
	CreatedAt  time.Time       `json:"created_at"`
	Sentiment  SentimentResult `json:"sentiment"`
	Emotions   EmotionProfile  `json:"emotions,omitempty"`
	TopicTags  []string        `json:"topic_tags,omitempty"`
	IsDerived  bool            `json:"is_derived"`
	SourceURL  string          `json:"source_url"`
}

// RawItem is the tuple yielded by a content source before validation
// and scoring.
type RawItem struct {
	SourceID      string    `json:"source_id"`
	EntityHint    string    `json:"entity_hint"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	IsDerived     bool      `json:"is_derived"`
	SourceURL     string    `json:"source_url"`
	SourceType    string    `json:"source_type,omitempty"`
	AuthorFlagged bool      `json:"author_flagged,omitempty"`
}

// QualityMetricsSnapshot is an immutable record of one completed
// processing run.
type QualityMetricsSnapshot struct {
	ProcessedAt       time.Time `json:"processed_at"`
	TotalProcessed    int       `json:"total_processed"`
	ValidCount        int       `json:"valid_count"`
	InvalidCount      int       `json:"invalid_count"`
	SpamFilteredCount int       `json:"spam_filtered_count"`
	ScoreErrorCount   int       `json:"score_error_count"`
	MentionsFound     int       `json:"mentions_found"`
	UniqueEntities    int       `json:"unique_entities"`
	AverageConfidence float64   `json:"average_confidence"`
	QualityScore      float64   `json:"quality_score"`
}

// TrendPoint is one time bucket for one entity. Recomputed on demand
// from the persisted mention set, never independently mutated.
type TrendPoint struct {
	EntityName    string    `json:"entity_name"`
	BucketStart   time.Time `json:"bucket_start"`
	Granularity   string    `json:"granularity"`
	MentionCount  int       `json:"mention_count"`
	AvgSentiment  float64   `json:"avg_sentiment"`
	AvgConfidence float64   `json:"avg_confidence"`
	PositiveCount int       `json:"positive_count"`
	NegativeCount int       `json:"negative_count"`
	NeutralCount  int       `json:"neutral_count"`
}

// ComparisonResult is computed per request and never persisted.
// JSON naming follows the dashboard contract.
type ComparisonResult struct {
	Entities        []string                      `json:"bars"`
	Metrics         []string                      `json:"metrics"`
	WindowDays      int                           `json:"analysis_period"`
	PerEntityValues map[string]map[string]float64 `json:"comparison_data"`
	Rankings        map[string][]string           `json:"rankings"`
}

// Job states. Transitions are one-directional: queued -> running ->
// completed|failed, or queued -> failed on cancellation.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ProcessingJob tracks the lifecycle of one asynchronous bulk-processing
// request. Owned exclusively by the job orchestrator.
type ProcessingJob struct {
	JobID         string                 `json:"job_id"`
	BatchSelector string                 `json:"batch_selector"`
	Mode          string                 `json:"mode"`
	Priority      string                 `json:"priority"`
	State         JobState               `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
	StartedAt     *time.Time             `json:"started_at,omitempty"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
	Progress      int                    `json:"progress"`
	ResultSummary map[string]interface{} `json:"result_summary,omitempty"`
	FailureReason string                 `json:"failure_reason,omitempty"`
}

// EntityHighlight is one entry in a top-entities list.
type EntityHighlight struct {
	Name      string  `json:"name"`
	Mentions  int     `json:"mentions"`
	Sentiment float64 `json:"sentiment"`
}

// AnalyticsSummary is the overall read-path summary.
type AnalyticsSummary struct {
	TotalMentions         int               `json:"total_mentions"`
	UniqueEntities        int               `json:"unique_entities"`
	AvgSentimentScore     float64           `json:"avg_sentiment_score"`
	SentimentDistribution map[string]int    `json:"sentiment_distribution"`
	TopEntities           []EntityHighlight `json:"top_entities"`
	DataQualityScore      *float64          `json:"data_quality_score,omitempty"`
	AnalysisDate          time.Time         `json:"analysis_date"`
}

// TrendSummaryStats accompanies a trend report.
type TrendSummaryStats struct {
	TotalMentions    int     `json:"total_mentions"`
	AverageSentiment float64 `json:"average_sentiment"`
	PeriodDays       int     `json:"period_days"`
	EntitiesAnalyzed int     `json:"entities_analyzed"`
}

// TrendReport is the read-path trend response.
type TrendReport struct {
	PeriodStart  time.Time         `json:"period_start"`
	PeriodEnd    time.Time         `json:"period_end"`
	Granularity  string            `json:"granularity"`
	Trends       []TrendPoint      `json:"trends"`
	SummaryStats TrendSummaryStats `json:"summary_stats"`
}

// RunReport is handed to the notification channels after a processing
// run completes.
type RunReport struct {
	GeneratedAt   time.Time              `json:"generated_at"`
	BatchSelector string                 `json:"batch_selector"`
	Snapshot      QualityMetricsSnapshot `json:"snapshot"`
	TopEntities   []EntityHighlight      `json:"top_entities"`
}
