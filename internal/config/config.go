package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the engine.
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Schedule configuration
	ReportSchedule string // "daily" or "weekly"

	// Persistence
	DatabasePath string // SQLite file; empty selects the in-memory store
	DataDir      string // local archive directory

	// Azure Blob archive (used instead of DataDir when set)
	StorageAccount   string
	StorageContainer string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Content source
	FeedURL string

	// Entities to track (venue names and aliases)
	EntityNames []string

	// Validator thresholds
	MinTextLength     int
	MaxTextLength     int
	RelevanceFloor    float64
	MaxUppercaseRatio float64
	DuplicateWindow   int

	// Fusion configuration
	ModelWeights             map[string]float64
	DefaultModelWeight       float64
	PositiveCutoff           float64
	NegativeCutoff           float64
	SingleModelConfidenceCap float64
	HighConfidenceThreshold  float64
	ModelTimeout             time.Duration

	// Remote model adapter
	RemoteModelURL string
	RemoteModelRPS float64

	// Batch processing
	BatchConcurrency int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Debug:          getBoolEnv("DEBUG", false),
		ReportSchedule: getEnv("REPORT_SCHEDULE", "weekly"),

		DatabasePath: getEnv("DATABASE_PATH", ""),
		DataDir:      getEnv("DATA_DIR", "data"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "runs"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		FeedURL: getEnv("FEED_URL", ""),

		EntityNames: getSliceEnv("ENTITY_NAMES", nil),

		MinTextLength:     getIntEnv("MIN_TEXT_LENGTH", 10),
		MaxTextLength:     getIntEnv("MAX_TEXT_LENGTH", 10000),
		RelevanceFloor:    getFloatEnv("RELEVANCE_FLOOR", 0.1),
		MaxUppercaseRatio: getFloatEnv("MAX_UPPERCASE_RATIO", 0.5),
		DuplicateWindow:   getIntEnv("DUPLICATE_WINDOW", 512),

		ModelWeights:             getWeightsEnv("MODEL_WEIGHTS", defaultModelWeights()),
		DefaultModelWeight:       getFloatEnv("DEFAULT_MODEL_WEIGHT", 0.25),
		PositiveCutoff:           getFloatEnv("POSITIVE_CUTOFF", 0.1),
		NegativeCutoff:           getFloatEnv("NEGATIVE_CUTOFF", -0.1),
		SingleModelConfidenceCap: getFloatEnv("SINGLE_MODEL_CONFIDENCE_CAP", 0.70),
		HighConfidenceThreshold:  getFloatEnv("HIGH_CONFIDENCE_THRESHOLD", 0.75),
		ModelTimeout:             getDurationEnv("MODEL_TIMEOUT", 10*time.Second),

		RemoteModelURL: getEnv("REMOTE_MODEL_URL", ""),
		RemoteModelRPS: getFloatEnv("REMOTE_MODEL_RPS", 5),

		BatchConcurrency: getIntEnv("BATCH_CONCURRENCY", 8),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaultModelWeights() map[string]float64 {
	// Reliability weights: the remote transformer model carries the most
	// weight, the lexicon scorer a medium weight, the intensity
	// heuristics the least.
	return map[string]float64{
		"remote":    0.5,
		"lexicon":   0.3,
		"intensity": 0.2,
	}
}

func (c *Config) validate() error {
	if c.ReportSchedule != "daily" && c.ReportSchedule != "weekly" {
		return fmt.Errorf("REPORT_SCHEDULE must be 'daily' or 'weekly'")
	}

	if c.MinTextLength < 1 || c.MaxTextLength < c.MinTextLength {
		return fmt.Errorf("text length bounds are inconsistent (min=%d max=%d)", c.MinTextLength, c.MaxTextLength)
	}

	if c.RelevanceFloor < 0 || c.RelevanceFloor > 1 {
		return fmt.Errorf("RELEVANCE_FLOOR must be within [0,1]")
	}

	if c.PositiveCutoff <= c.NegativeCutoff {
		return fmt.Errorf("POSITIVE_CUTOFF must be greater than NEGATIVE_CUTOFF")
	}

	if c.SingleModelConfidenceCap >= c.HighConfidenceThreshold {
		return fmt.Errorf("SINGLE_MODEL_CONFIDENCE_CAP must stay below HIGH_CONFIDENCE_THRESHOLD")
	}

	if c.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

// getWeightsEnv parses "name:weight,name:weight" pairs.
func getWeightsEnv(key string, defaultValue map[string]float64) map[string]float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	weights := make(map[string]float64)
	for _, pair := range strings.Split(value, ",") {
		name, raw, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found {
			continue
		}
		if w, err := strconv.ParseFloat(raw, 64); err == nil && w > 0 {
			weights[name] = w
		}
	}

	if len(weights) == 0 {
		return defaultValue
	}
	return weights
}
