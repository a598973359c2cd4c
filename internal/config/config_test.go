package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "weekly", cfg.ReportSchedule)
	assert.Equal(t, 10, cfg.MinTextLength)
	assert.InDelta(t, 0.1, cfg.PositiveCutoff, 1e-9)
	assert.InDelta(t, -0.1, cfg.NegativeCutoff, 1e-9)
	assert.InDelta(t, 0.5, cfg.ModelWeights["remote"], 1e-9)
	assert.InDelta(t, 0.3, cfg.ModelWeights["lexicon"], 1e-9)
	assert.InDelta(t, 0.2, cfg.ModelWeights["intensity"], 1e-9)
}

func TestLoadModelWeightsOverride(t *testing.T) {
	t.Setenv("MODEL_WEIGHTS", "remote:0.6, lexicon:0.4, bogus, zero:0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"remote": 0.6, "lexicon": 0.4}, cfg.ModelWeights)
}

func TestLoadRejectsInvertedCutoffs(t *testing.T) {
	t.Setenv("POSITIVE_CUTOFF", "-0.2")

	_, err := Load()
	assert.ErrorContains(t, err, "POSITIVE_CUTOFF")
}

func TestLoadRejectsConfidenceCapAboveThreshold(t *testing.T) {
	t.Setenv("SINGLE_MODEL_CONFIDENCE_CAP", "0.9")

	_, err := Load()
	assert.ErrorContains(t, err, "SINGLE_MODEL_CONFIDENCE_CAP")
}

func TestLoadRequiresSMTPForEmail(t *testing.T) {
	t.Setenv("NOTIFICATION_EMAIL", "ops@example.com")

	_, err := Load()
	assert.ErrorContains(t, err, "SMTP")
}

func TestLoadEntityNames(t *testing.T) {
	t.Setenv("ENTITY_NAMES", "Anchor, Brewhouse , ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Anchor", "Brewhouse"}, cfg.EntityNames)
}
