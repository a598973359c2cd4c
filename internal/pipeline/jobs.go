package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/venuepulse/sentiment-engine/internal/config"
	"github.com/venuepulse/sentiment-engine/internal/models"
	"github.com/venuepulse/sentiment-engine/internal/notifications"
	"github.com/venuepulse/sentiment-engine/internal/quality"
	"github.com/venuepulse/sentiment-engine/internal/sources"
	"github.com/venuepulse/sentiment-engine/internal/storage"
)

var (
	// ErrJobNotFound is returned for unknown job IDs.
	ErrJobNotFound = errors.New("job not found")
	// ErrBatchBusy is returned when a job for the same batch selector
	// is already queued or running.
	ErrBatchBusy = errors.New("a job for this batch is already active")
	// ErrJobTerminal is returned when cancelling a finished job.
	ErrJobTerminal = errors.New("job already finished")
)

const cancelledReason = "cancelled"

// Orchestrator owns the lifecycle of asynchronous bulk-processing jobs.
// At most one active job exists per batch selector.
type Orchestrator struct {
	cfg      *config.Config
	pipeline *Pipeline
	sources  []sources.Source
	history  *quality.History
	archive  storage.Archive        // optional
	notifier notifications.Notifier // optional

	mu      sync.Mutex
	jobs    map[string]*models.ProcessingJob
	active  map[string]string // batch selector -> job ID
	cancels map[string]context.CancelFunc

	wg sync.WaitGroup
}

func NewOrchestrator(cfg *config.Config, p *Pipeline, srcs []sources.Source,
	history *quality.History, archive storage.Archive, notifier notifications.Notifier) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		pipeline: p,
		sources:  srcs,
		history:  history,
		archive:  archive,
		notifier: notifier,
		jobs:     make(map[string]*models.ProcessingJob),
		active:   make(map[string]string),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Submit queues a processing job for the batch selector and starts it
// asynchronously. Rejected with ErrBatchBusy when the selector already
// has a non-terminal job.
func (o *Orchestrator) Submit(selector, mode, priority string) (models.ProcessingJob, error) {
	if selector == "" {
		selector = "all"
	}
	if mode == "" {
		mode = ModeFull
	}
	if priority == "" {
		priority = "normal"
	}

	o.mu.Lock()
	if activeID, busy := o.active[selector]; busy {
		o.mu.Unlock()
		return models.ProcessingJob{}, fmt.Errorf("%w: job %s", ErrBatchBusy, activeID)
	}

	job := &models.ProcessingJob{
		JobID:         uuid.NewString(),
		BatchSelector: selector,
		Mode:          mode,
		Priority:      priority,
		State:         models.JobQueued,
		CreatedAt:     time.Now().UTC(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.jobs[job.JobID] = job
	o.active[selector] = job.JobID
	o.cancels[job.JobID] = cancel
	snapshot := *job
	o.mu.Unlock()

	logrus.Infof("Queued processing job %s for batch %q (mode=%s, priority=%s)",
		job.JobID, selector, mode, priority)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(ctx, job.JobID)
	}()

	return snapshot, nil
}

// Status returns a copy of the job record.
func (o *Orchestrator) Status(jobID string) (models.ProcessingJob, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok := o.jobs[jobID]
	if !ok {
		return models.ProcessingJob{}, ErrJobNotFound
	}
	return *job, nil
}

// List returns all known jobs, newest first.
func (o *Orchestrator) List() []models.ProcessingJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.ProcessingJob, 0, len(o.jobs))
	for _, job := range o.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].JobID < out[j].JobID
	})
	return out
}

// Cancel stops a job. A queued job fails immediately; a running job is
// signalled and fails once its loop observes the cancellation.
func (o *Orchestrator) Cancel(jobID string) (models.ProcessingJob, error) {
	o.mu.Lock()
	job, ok := o.jobs[jobID]
	if !ok {
		o.mu.Unlock()
		return models.ProcessingJob{}, ErrJobNotFound
	}
	if job.State.Terminal() {
		snapshot := *job
		o.mu.Unlock()
		return snapshot, ErrJobTerminal
	}

	cancel := o.cancels[jobID]
	if job.State == models.JobQueued {
		o.failLocked(job, cancelledReason)
	}
	snapshot := *job
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	logrus.Infof("Cancellation requested for job %s", jobID)
	return snapshot, nil
}

// Wait blocks until all started jobs have finished. Used on shutdown
// and by tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(ctx context.Context, jobID string) {
	o.mu.Lock()
	job, ok := o.jobs[jobID]
	if !ok || job.State != models.JobQueued {
		// Cancelled before it started.
		o.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	job.State = models.JobRunning
	job.StartedAt = &now
	selector, mode := job.BatchSelector, job.Mode
	o.mu.Unlock()

	logrus.Infof("Job %s running for batch %q", jobID, selector)
	start := time.Now()

	items, fetchErrs := o.fetchAll(ctx, selector)
	if ctx.Err() != nil {
		o.finishFailed(jobID, cancelledReason)
		return
	}
	if len(items) == 0 && len(fetchErrs) > 0 {
		o.finishFailed(jobID, fmt.Sprintf("all sources failed: %v", errors.Join(fetchErrs...)))
		return
	}

	stats, mentions, err := o.processBatch(ctx, jobID, items, mode)
	if err != nil {
		o.finishFailed(jobID, err.Error())
		return
	}

	processedAt := time.Now().UTC()
	snap := quality.Snapshot(processedAt, stats)
	o.history.Append(snap)

	report := buildRunReport(processedAt, selector, snap, mentions)
	o.deliver(jobID, selector, report)

	o.mu.Lock()
	if job, ok := o.jobs[jobID]; ok && !job.State.Terminal() {
		done := time.Now().UTC()
		job.State = models.JobCompleted
		job.CompletedAt = &done
		job.Progress = 100
		job.ResultSummary = map[string]interface{}{
			"total_processed": snap.TotalProcessed,
			"mentions_found":  snap.MentionsFound,
			"unique_entities": snap.UniqueEntities,
			"quality_score":   snap.QualityScore,
			"source_errors":   len(fetchErrs),
			"duration":        time.Since(start).Round(time.Millisecond).String(),
		}
		delete(o.active, job.BatchSelector)
		delete(o.cancels, jobID)
	}
	o.mu.Unlock()

	logrus.Infof("Job %s completed: %d processed, %d mentions, quality %.2f",
		jobID, snap.TotalProcessed, snap.MentionsFound, snap.QualityScore)
}

// fetchAll fans out to every enabled source concurrently.
func (o *Orchestrator) fetchAll(ctx context.Context, selector string) ([]models.RawItem, []error) {
	var wg sync.WaitGroup
	itemsChan := make(chan []models.RawItem, len(o.sources))
	errorsChan := make(chan error, len(o.sources))

	// Date-scoped batches fetch exactly their batch; only unscoped runs
	// are bounded by the schedule window.
	since := time.Time{}
	if selector == "all" {
		window := 7 * 24 * time.Hour
		if o.cfg.ReportSchedule == "daily" {
			window = 24 * time.Hour
		}
		since = time.Now().UTC().Add(-window)
	}

	for _, source := range o.sources {
		if !source.IsEnabled() {
			logrus.Debugf("Skipping disabled source %s", source.GetName())
			continue
		}
		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()

			items, err := src.FetchItems(ctx, selector, since)
			if err != nil {
				logrus.Errorf("Error fetching from %s: %v", src.GetName(), err)
				errorsChan <- fmt.Errorf("%s: %w", src.GetName(), err)
				return
			}
			logrus.Infof("Fetched %d items from %s", len(items), src.GetName())
			itemsChan <- items
		}(source)
	}

	wg.Wait()
	close(itemsChan)
	close(errorsChan)

	var all []models.RawItem
	for items := range itemsChan {
		all = append(all, items...)
	}
	var errs []error
	for err := range errorsChan {
		errs = append(errs, err)
	}
	return all, errs
}

// processBatch runs the items through the pipeline with bounded
// concurrency, keeping the job's progress monotone.
func (o *Orchestrator) processBatch(ctx context.Context, jobID string, items []models.RawItem, mode string) (quality.RunStats, []models.Mention, error) {
	concurrency := o.cfg.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu       sync.Mutex
		stats    quality.RunStats
		mentions []models.Mention
		entities = make(map[string]struct{})
		done     int
	)
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(item models.RawItem) {
			defer wg.Done()
			defer func() { <-sem }()

			result := o.pipeline.ProcessItem(ctx, item, mode)

			mu.Lock()
			defer mu.Unlock()
			stats.TotalProcessed++
			switch result.Status {
			case ItemAccepted:
				stats.Accepted++
				stats.MentionsFound++
				stats.ConfidenceSum += result.Mention.Sentiment.Confidence
				stats.ScoredCount++
				entities[result.Mention.EntityName] = struct{}{}
				mentions = append(mentions, *result.Mention)
			case ItemRejected:
				stats.Rejected++
				if result.Verdict.Spam() {
					stats.SpamFiltered++
				}
			case ItemScoreFailed:
				stats.Rejected++
				stats.ScoreErrors++
				logrus.Warnf("Scoring failed for item %s: %v", result.SourceID, result.Err)
			}
			done++
			o.setProgress(jobID, done*100/len(items))
		}(item)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return stats, nil, errors.New(cancelledReason)
	}

	stats.UniqueEntities = len(entities)
	return stats, mentions, nil
}

// setProgress raises the job's progress; it never lowers it.
func (o *Orchestrator) setProgress(jobID string, progress int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if job, ok := o.jobs[jobID]; ok && progress > job.Progress && !job.State.Terminal() {
		if progress > 100 {
			progress = 100
		}
		job.Progress = progress
	}
}

func (o *Orchestrator) finishFailed(jobID, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if job, ok := o.jobs[jobID]; ok && !job.State.Terminal() {
		o.failLocked(job, reason)
	}
}

// failLocked transitions a job to failed. Caller holds o.mu.
func (o *Orchestrator) failLocked(job *models.ProcessingJob, reason string) {
	now := time.Now().UTC()
	job.State = models.JobFailed
	job.CompletedAt = &now
	job.FailureReason = reason
	delete(o.active, job.BatchSelector)
	delete(o.cancels, job.JobID)
	logrus.Warnf("Job %s failed: %s", job.JobID, reason)
}

// deliver archives the run report and sends notifications. Neither
// failure fails the job.
func (o *Orchestrator) deliver(jobID, selector string, report models.RunReport) {
	if o.archive != nil {
		data, err := json.MarshalIndent(report, "", "  ")
		if err == nil {
			name := fmt.Sprintf("reports/%s/%s.json", selector, jobID)
			if err := o.archive.Store(name, data); err != nil {
				logrus.Errorf("Failed to archive run report for job %s: %v", jobID, err)
			}
		}
	}
	if o.notifier != nil {
		if err := o.notifier.SendRunReport(&report); err != nil {
			logrus.Errorf("Failed to send run report for job %s: %v", jobID, err)
		}
	}
}

func buildRunReport(generatedAt time.Time, selector string, snap models.QualityMetricsSnapshot, mentions []models.Mention) models.RunReport {
	type acc struct {
		count int
		sum   float64
	}
	perEntity := make(map[string]*acc)
	for _, m := range mentions {
		a, ok := perEntity[m.EntityName]
		if !ok {
			a = &acc{}
			perEntity[m.EntityName] = a
		}
		a.count++
		a.sum += m.Sentiment.Score
	}

	top := make([]models.EntityHighlight, 0, len(perEntity))
	for name, a := range perEntity {
		top = append(top, models.EntityHighlight{
			Name:      name,
			Mentions:  a.count,
			Sentiment: a.sum / float64(a.count),
		})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Mentions != top[j].Mentions {
			return top[i].Mentions > top[j].Mentions
		}
		return top[i].Name < top[j].Name
	})

	return models.RunReport{
		GeneratedAt:   generatedAt,
		BatchSelector: selector,
		Snapshot:      snap,
		TopEntities:   top,
	}
}
