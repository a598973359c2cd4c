package scheduler

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/venuepulse/sentiment-engine/internal/config"
	"github.com/venuepulse/sentiment-engine/internal/pipeline"
)

// Service schedules recurring processing runs. Each tick submits a job
// for the current day's batch; a batch already being processed is left
// alone.
type Service struct {
	config       *config.Config
	orchestrator *pipeline.Orchestrator
	cron         *cron.Cron
}

func NewService(cfg *config.Config, orchestrator *pipeline.Orchestrator) *Service {
	return &Service{
		config:       cfg,
		orchestrator: orchestrator,
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled processing runs.
func (s *Service) Start() error {
	var cronExpression string

	switch s.config.ReportSchedule {
	case "daily":
		// Run daily at 6 AM UTC, after overnight reviews land.
		cronExpression = "0 0 6 * * *"
	case "weekly":
		cronExpression = "0 0 6 * * MON"
	default:
		cronExpression = "0 0 6 * * MON"
	}

	_, err := s.cron.AddFunc(cronExpression, func() {
		s.submitBatch(time.Now().UTC().Format("2006-01-02"))
	})
	if err != nil {
		return err
	}

	// Catch-up pass for the previous day, in case the engine was down
	// during its scheduled run.
	_, err = s.cron.AddFunc("0 30 6 * * *", func() {
		s.submitBatch(time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02"))
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s schedule", s.config.ReportSchedule)
	return nil
}

func (s *Service) submitBatch(selector string) {
	job, err := s.orchestrator.Submit(selector, pipeline.ModeFull, "normal")
	if err != nil {
		if errors.Is(err, pipeline.ErrBatchBusy) {
			logrus.Infof("Batch %s already has an active job, skipping scheduled run", selector)
			return
		}
		logrus.Errorf("Scheduled run for batch %s failed to submit: %v", selector, err)
		return
	}
	logrus.Infof("Scheduled run submitted job %s for batch %s", job.JobID, selector)
}

// Stop stops the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
