package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuepulse/sentiment-engine/internal/config"
	"github.com/venuepulse/sentiment-engine/internal/models"
)

func sampleReport() *models.RunReport {
	return &models.RunReport{
		GeneratedAt:   time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC),
		BatchSelector: "2025-06-20",
		Snapshot: models.QualityMetricsSnapshot{
			TotalProcessed:    10,
			ValidCount:        7,
			InvalidCount:      3,
			SpamFilteredCount: 1,
			MentionsFound:     7,
			UniqueEntities:    2,
			AverageConfidence: 0.81,
			QualityScore:      0.79,
		},
		TopEntities: []models.EntityHighlight{
			{Name: "Anchor", Mentions: 5, Sentiment: 0.42},
			{Name: "Brewhouse", Mentions: 2, Sentiment: -0.1},
		},
	}
}

func TestSendRunReportToTeams(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(&config.Config{TeamsWebhookURL: server.URL})
	require.NoError(t, svc.SendRunReport(sampleReport()))

	assert.Equal(t, "MessageCard", received.Type)
	assert.Contains(t, received.Title, "2025-06-20")
	require.NotEmpty(t, received.Sections)
	assert.Equal(t, "Run Quality", received.Sections[0].ActivityTitle)
	assert.Contains(t, received.Sections[1].ActivityText, "Anchor")
}

func TestSendRunReportTeamsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewService(&config.Config{TeamsWebhookURL: server.URL})
	assert.Error(t, svc.SendRunReport(sampleReport()))
}

func TestSendRunReportNoChannelsConfigured(t *testing.T) {
	svc := NewService(&config.Config{})
	assert.NoError(t, svc.SendRunReport(sampleReport()))
}

func TestBuildEmailBodies(t *testing.T) {
	svc := NewService(&config.Config{})
	report := sampleReport()

	html, err := svc.buildEmailHTML(report)
	require.NoError(t, err)
	assert.Contains(t, html, "Anchor")
	assert.Contains(t, html, "0.79")

	text := svc.buildEmailText(report)
	assert.Contains(t, text, "batch 2025-06-20")
	assert.Contains(t, text, "Brewhouse")
}
