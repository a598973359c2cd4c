package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/venuepulse/sentiment-engine/internal/config"
	"github.com/venuepulse/sentiment-engine/internal/models"
)

// Service sends run reports over Teams webhooks and SMTP email.
type Service struct {
	config *config.Config
	client *resty.Client
}

var _ Notifier = (*Service)(nil)

// TeamsMessage is the MessageCard payload Teams webhooks accept.
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	ActivityText  string      `json:"activityText,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendRunReport sends a run report via every configured channel. A
// failing channel does not stop the others.
func (s *Service) SendRunReport(report *models.RunReport) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(report); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent run report to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent run report via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(report *models.RunReport) error {
	message := s.buildTeamsMessage(report)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(report *models.RunReport) *TeamsMessage {
	snap := report.Snapshot

	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Venue Sentiment Run - %s", report.BatchSelector),
		Text: fmt.Sprintf("Processed %d items, found %d mentions across %d venues",
			snap.TotalProcessed, snap.MentionsFound, snap.UniqueEntities),
	}

	facts := []TeamsFact{
		{Name: "Quality Score", Value: fmt.Sprintf("%.2f", snap.QualityScore)},
		{Name: "Accepted", Value: fmt.Sprintf("%d", snap.ValidCount)},
		{Name: "Rejected", Value: fmt.Sprintf("%d", snap.InvalidCount)},
		{Name: "Spam Filtered", Value: fmt.Sprintf("%d", snap.SpamFilteredCount)},
		{Name: "Avg Confidence", Value: fmt.Sprintf("%.2f", snap.AverageConfidence)},
		{Name: "Generated", Value: report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
	}
	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Run Quality",
		Facts:         facts,
		Markdown:      true,
	})

	if len(report.TopEntities) > 0 {
		var lines []string
		limit := 5
		if len(report.TopEntities) < limit {
			limit = len(report.TopEntities)
		}
		for i := 0; i < limit; i++ {
			entity := report.TopEntities[i]
			lines = append(lines, fmt.Sprintf("**%s** - %d mentions, avg sentiment %.2f",
				entity.Name, entity.Mentions, entity.Sentiment))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Top Venues",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(report *models.RunReport) error {
	subject := fmt.Sprintf("Venue Sentiment Run - %s (%d mentions)",
		report.BatchSelector, report.Snapshot.MentionsFound)

	htmlBody, err := s.buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

var emailTemplate = template.Must(template.New("email").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Venue Sentiment Run Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #2d6a4f; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .entity { border-left: 4px solid #2d6a4f; padding: 10px; margin: 10px 0; background-color: #fafafa; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Venue Sentiment Run Report</h1>
        <p>Batch {{.BatchSelector}} generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Run Quality</h2>
        <p><strong>Quality Score:</strong> {{printf "%.2f" .Snapshot.QualityScore}}</p>
        <p><strong>Processed:</strong> {{.Snapshot.TotalProcessed}}</p>
        <p><strong>Accepted:</strong> {{.Snapshot.ValidCount}}</p>
        <p><strong>Rejected:</strong> {{.Snapshot.InvalidCount}}</p>
        <p><strong>Spam Filtered:</strong> {{.Snapshot.SpamFilteredCount}}</p>
        <p><strong>Average Confidence:</strong> {{printf "%.2f" .Snapshot.AverageConfidence}}</p>
    </div>

    {{if .TopEntities}}
    <h2>Top Venues</h2>
    {{range .TopEntities}}
    <div class="entity">
        <strong>{{.Name}}</strong> - {{.Mentions}} mentions, avg sentiment {{printf "%.2f" .Sentiment}}
    </div>
    {{end}}
    {{end}}
</body>
</html>
`))

func (s *Service) buildEmailHTML(report *models.RunReport) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("executing email template: %w", err)
	}
	return buf.String(), nil
}

func (s *Service) buildEmailText(report *models.RunReport) string {
	var b strings.Builder
	snap := report.Snapshot

	fmt.Fprintf(&b, "Venue Sentiment Run Report - batch %s\n\n", report.BatchSelector)
	fmt.Fprintf(&b, "Quality score: %.2f\n", snap.QualityScore)
	fmt.Fprintf(&b, "Processed: %d, accepted: %d, rejected: %d, spam filtered: %d\n",
		snap.TotalProcessed, snap.ValidCount, snap.InvalidCount, snap.SpamFilteredCount)
	fmt.Fprintf(&b, "Mentions found: %d across %d venues\n", snap.MentionsFound, snap.UniqueEntities)
	fmt.Fprintf(&b, "Average confidence: %.2f\n\n", snap.AverageConfidence)

	for _, entity := range report.TopEntities {
		fmt.Fprintf(&b, "%s: %d mentions, avg sentiment %.2f\n",
			entity.Name, entity.Mentions, entity.Sentiment)
	}

	return b.String()
}
