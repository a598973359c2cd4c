package notifications

import "github.com/venuepulse/sentiment-engine/internal/models"

// Notifier delivers run reports to the configured channels.
type Notifier interface {
	SendRunReport(report *models.RunReport) error
}
