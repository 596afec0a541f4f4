package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"go.uber.org/zap"
)

const maxStoredFailures = 100

type importWorkerJobRepo interface {
	ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.ImportJob, error)
	Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error
	UpdateProgress(ctx context.Context, jobID string, progress domain.ImportProgress) error
	Complete(ctx context.Context, jobID string, summary domain.ImportSummary) error
	Requeue(ctx context.Context, jobID string, reason string) error
	Fail(ctx context.Context, jobID string, reason string) error
}

type ImportWorkerConfig struct {
	Workers           int
	ChunkSize         int
	PollInterval      time.Duration
	LeaseDuration     time.Duration
	HeartbeatInterval time.Duration
	// Location decides which calendar day counts as today.
	Location *time.Location
	Now      func() time.Time
	Notifier Notifier
}

// ImportWorker claims queued import jobs and drives a Runner over each file,
// persisting progress after every chunk.
type ImportWorker struct {
	repo     importWorkerJobRepo
	source   ImportSource
	creator  recordCreator
	waitlist waitlistInserter
	logger   *zap.Logger
	cfg      ImportWorkerConfig

	once sync.Once
}

func NewImportWorker(repo importWorkerJobRepo, source ImportSource, creator recordCreator, waitlist waitlistInserter, logger *zap.Logger, cfg ImportWorkerConfig) *ImportWorker {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 60 * time.Second
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = cfg.LeaseDuration / 2
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ImportWorker{
		repo:     repo,
		source:   source,
		creator:  creator,
		waitlist: waitlist,
		logger:   logger,
		cfg:      cfg,
	}
}

func (w *ImportWorker) Start(ctx context.Context) {
	w.once.Do(func() {
		for i := 0; i < w.cfg.Workers; i++ {
			go w.workerLoop(ctx)
		}
	})
}

func (w *ImportWorker) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.repo.ClaimNext(ctx, w.cfg.LeaseDuration)
		if err != nil {
			w.logger.Error("claim next import job failed", zap.Error(err))
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if job == nil {
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if err := w.ProcessJob(ctx, *job); err != nil {
			w.logger.Error("process import job failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// ProcessJob runs one claimed job to completion. A job that was interrupted
// earlier resumes after the rows it had already processed.
func (w *ImportWorker) ProcessJob(ctx context.Context, job domain.ImportJob) error {
	runCfg, err := domain.NewRunConfig(job.Roles, job.Notify)
	if err != nil {
		if failErr := w.repo.Fail(ctx, job.ID, truncateReason(err.Error())); failErr != nil {
			return fmt.Errorf("%v; fail update failed: %w", err, failErr)
		}
		return err
	}

	sink := &jobProgressSink{repo: w.repo, jobID: job.ID, base: job.Progress}
	runner, err := NewRunner(ctx, RunnerDeps{
		Source:   w.source,
		Creator:  w.creator,
		Waitlist: w.waitlist,
		Sink:     sink,
		Notifier: w.cfg.Notifier,
		Logger:   w.logger.With(zap.String("job_id", job.ID)),
	}, job.SourcePath, RunnerConfig{
		Run:       runCfg,
		Today:     domain.Today(w.cfg.Now(), w.cfg.Location),
		ChunkSize: w.cfg.ChunkSize,
		StartAt:   job.Progress.ProcessedCount,
	})
	if err != nil {
		return w.onProcessingError(ctx, job, err)
	}
	defer runner.Close()

	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.repo.Heartbeat(ctx, job.ID, w.cfg.LeaseDuration); err != nil {
				return w.onProcessingError(ctx, job, fmt.Errorf("heartbeat: %w", err))
			}
		default:
		}

		progress, err := runner.Step(ctx)
		if err != nil {
			return w.onProcessingError(ctx, job, fmt.Errorf("process chunk: %w", err))
		}
		if progress.Done {
			return nil
		}

		if err := w.repo.Heartbeat(ctx, job.ID, w.cfg.LeaseDuration); err != nil {
			return w.onProcessingError(ctx, job, fmt.Errorf("heartbeat after chunk: %w", err))
		}
	}
}

func (w *ImportWorker) onProcessingError(ctx context.Context, job domain.ImportJob, err error) error {
	reason := truncateReason(err.Error())
	if job.Attempts < job.MaxAttempts {
		if requeueErr := w.repo.Requeue(ctx, job.ID, reason); requeueErr != nil {
			return fmt.Errorf("%v; requeue failed: %w", err, requeueErr)
		}
		return err
	}

	if failErr := w.repo.Fail(ctx, job.ID, reason); failErr != nil {
		return fmt.Errorf("%v; fail update failed: %w", err, failErr)
	}
	return err
}

// jobProgressSink persists runner progress on the job row. Counters are
// added to the ones stored by earlier attempts of the same job.
type jobProgressSink struct {
	repo  importWorkerJobRepo
	jobID string
	base  domain.ImportProgress
}

func (s *jobProgressSink) ReportProgress(ctx context.Context, p Progress) error {
	return s.repo.UpdateProgress(ctx, s.jobID, domain.ImportProgress{
		ProcessedCount:  p.Processed,
		TotalCount:      p.Total,
		CreatedCount:    s.base.CreatedCount + p.Created,
		WaitlistedCount: s.base.WaitlistedCount + p.Waitlisted,
		SkippedCount:    s.base.SkippedCount + p.Skipped,
		FailedCount:     s.base.FailedCount + p.Failed,
	})
}

func (s *jobProgressSink) Complete(ctx context.Context, success bool, result domain.RunResult) error {
	if !success {
		return nil
	}
	return s.repo.Complete(ctx, s.jobID, s.summary(result))
}

func (s *jobProgressSink) summary(result domain.RunResult) domain.ImportSummary {
	summary := domain.ImportSummary{
		CreatedCount:    s.base.CreatedCount + int64(len(result.Created)),
		WaitlistedCount: s.base.WaitlistedCount + int64(len(result.Waitlisted)),
		SkippedCount:    s.base.SkippedCount + result.Skipped,
		FailedCount:     s.base.FailedCount + int64(len(result.Failures)+len(result.WaitlistFailures)),
	}
	summary.ProcessedCount = s.base.ProcessedCount + int64(len(result.Created)+len(result.Waitlisted)) +
		result.Skipped + int64(len(result.Failures)+len(result.WaitlistFailures))
	summary.TotalCount = summary.ProcessedCount

	for _, failure := range result.Failures {
		if len(summary.Failures) >= maxStoredFailures {
			break
		}
		summary.Failures = append(summary.Failures, domain.ImportFailure{
			RowIndex: failure.RowIndex,
			Email:    failure.Record.Email,
			Reason:   truncateReason(failure.Err.Error()),
		})
	}
	for _, failure := range result.WaitlistFailures {
		if len(summary.Failures) >= maxStoredFailures {
			break
		}
		summary.Failures = append(summary.Failures, domain.ImportFailure{
			RowIndex: failure.RowIndex,
			Email:    failure.Record.Email,
			Reason:   truncateReason("add to waitlist: " + failure.Err.Error()),
		})
	}
	return summary
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	return reason[:maxLen]
}
