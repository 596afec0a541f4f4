package user

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"go.uber.org/zap"
)

const defaultChunkSize = 100

type ImportSource interface {
	Open(ctx context.Context, sourcePath string) (io.ReadCloser, error)
}

type recordCreator interface {
	Create(ctx context.Context, record domain.ImportRecord) (string, error)
}

type waitlistInserter interface {
	Insert(ctx context.Context, record domain.ImportRecord) (string, error)
}

// Progress is the state of a run after a step. Processed and Total count
// file rows; the other counters only cover rows handled by this runner.
type Progress struct {
	Processed  int64
	Total      int64
	Created    int64
	Waitlisted int64
	Skipped    int64
	Failed     int64
	Done       bool
}

// ProgressSink receives per-chunk progress and, exactly once, the final result.
type ProgressSink interface {
	ReportProgress(ctx context.Context, progress Progress) error
	Complete(ctx context.Context, success bool, result domain.RunResult) error
}

type RunnerConfig struct {
	Run       domain.RunConfig
	Today     domain.Date
	ChunkSize int
	// StartAt skips rows already processed by an earlier attempt.
	StartAt int64
}

type RunnerDeps struct {
	Source   ImportSource
	Creator  recordCreator
	Waitlist waitlistInserter
	Sink     ProgressSink
	Notifier Notifier
	Logger   *zap.Logger
}

// Runner processes one import file in chunks. It does not schedule itself:
// the host calls Step until Progress.Done, and may stop between steps.
type Runner struct {
	deps RunnerDeps
	cfg  RunnerConfig

	reader io.ReadCloser
	rows   *csv.Reader

	processed int64
	total     int64
	result    domain.RunResult
	finished  bool
}

// NewRunner counts the rows of sourcePath and opens it for streaming. Failing
// to open or count the file aborts the run before any row is processed.
func NewRunner(ctx context.Context, deps RunnerDeps, sourcePath string, cfg RunnerConfig) (*Runner, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Today.IsZero() {
		cfg.Today = domain.Today(time.Now(), nil)
	}
	if cfg.StartAt < 0 {
		cfg.StartAt = 0
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	total, err := countRows(ctx, deps.Source, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenSource, err)
	}

	reader, err := deps.Source.Open(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenSource, err)
	}

	r := &Runner{
		deps:   deps,
		cfg:    cfg,
		reader: reader,
		rows:   newCSVReader(reader),
		total:  total,
	}

	for r.processed < cfg.StartAt && r.processed < r.total {
		if _, err := r.rows.Read(); err != nil && !isRowError(err) {
			if errors.Is(err, io.EOF) {
				r.total = r.processed
				break
			}
			reader.Close()
			return nil, fmt.Errorf("%w: skip processed rows: %v", ErrReadSource, err)
		}
		r.processed++
	}

	return r, nil
}

// Step processes up to one chunk of rows and reports progress. Cancellation
// is honoured only before the chunk starts; a cancelled step consumes no rows.
func (r *Runner) Step(ctx context.Context) (Progress, error) {
	if r.finished {
		return r.Progress(), ErrRunFinished
	}
	if err := ctx.Err(); err != nil {
		return r.Progress(), err
	}

	rowCtx := context.WithoutCancel(ctx)
	for i := 0; i < r.cfg.ChunkSize && r.processed < r.total; i++ {
		row, err := r.rows.Read()
		if errors.Is(err, io.EOF) {
			r.total = r.processed
			break
		}
		if err != nil && !isRowError(err) {
			return r.Progress(), fmt.Errorf("%w: row %d: %v", ErrReadSource, r.processed, err)
		}

		if err != nil {
			r.skip(r.processed, &ParseError{Columns: len(row), Err: err})
		} else {
			r.processRow(rowCtx, r.processed, row)
		}
		r.processed++
	}

	progress := r.Progress()
	if err := r.deps.Sink.ReportProgress(ctx, progress); err != nil {
		return progress, fmt.Errorf("report progress: %w", err)
	}

	if r.processed >= r.total {
		progress.Done = true
		if err := r.finish(ctx, true); err != nil {
			return progress, fmt.Errorf("complete run: %w", err)
		}
	}
	return progress, nil
}

// Abort ends the run early with success=false. It is a no-op once the run
// has completed.
func (r *Runner) Abort(ctx context.Context) error {
	return r.finish(ctx, false)
}

func (r *Runner) Close() error {
	return r.reader.Close()
}

func (r *Runner) Progress() Progress {
	return Progress{
		Processed:  r.processed,
		Total:      r.total,
		Created:    int64(len(r.result.Created)),
		Waitlisted: int64(len(r.result.Waitlisted)),
		Skipped:    r.result.Skipped,
		Failed:     int64(len(r.result.Failures) + len(r.result.WaitlistFailures)),
		Done:       r.finished,
	}
}

func (r *Runner) Result() domain.RunResult {
	return r.result
}

func (r *Runner) processRow(ctx context.Context, rowIndex int64, row []string) {
	record, err := ParseRow(row, r.cfg.Run)
	if err != nil {
		r.skip(rowIndex, err)
		return
	}

	if domain.Decide(record, r.cfg.Today) == domain.Defer {
		entryID, err := r.deps.Waitlist.Insert(ctx, record)
		if err != nil {
			importRowsTotal.WithLabelValues(outcomeWaitlistFailed).Inc()
			r.deps.Logger.Error("could not add user to waitlist",
				zap.Int64("row", rowIndex),
				zap.String("email", record.Email),
				zap.Error(err),
			)
			r.result.WaitlistFailures = append(r.result.WaitlistFailures, domain.WaitlistFailure{
				RowIndex: rowIndex,
				Record:   record,
				Err:      err,
			})
			return
		}
		importRowsTotal.WithLabelValues(outcomeWaitlisted).Inc()
		r.result.Waitlisted = append(r.result.Waitlisted, domain.Outcome{ID: entryID, Record: record})
		return
	}

	userID, err := r.deps.Creator.Create(ctx, record)
	if err != nil {
		importRowsTotal.WithLabelValues(outcomeFailed).Inc()
		r.result.Failures = append(r.result.Failures, domain.CreationFailure{
			RowIndex: rowIndex,
			Record:   record,
			Err:      asCreationError(record, err),
		})
		return
	}
	importRowsTotal.WithLabelValues(outcomeCreated).Inc()
	r.result.Created = append(r.result.Created, domain.Outcome{ID: userID, Record: record})

	if r.cfg.Run.Notify && r.deps.Notifier != nil {
		if err := r.deps.Notifier.UserCreated(ctx, userID, record); err != nil {
			r.deps.Logger.Warn("user created notification failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

func (r *Runner) skip(rowIndex int64, err error) {
	importRowsTotal.WithLabelValues(outcomeSkipped).Inc()
	r.result.Skipped++
	r.deps.Logger.Debug("skipping malformed row", zap.Int64("row", rowIndex), zap.Error(err))
}

func (r *Runner) finish(ctx context.Context, success bool) error {
	if r.finished {
		return nil
	}
	r.finished = true

	resultLabel := "success"
	if !success {
		resultLabel = "aborted"
	}
	importRunsTotal.WithLabelValues(resultLabel).Inc()

	r.deps.Logger.Info("import run finished",
		zap.Bool("success", success),
		zap.Int64("processed", r.processed),
		zap.Int64("total", r.total),
		zap.Int("created", len(r.result.Created)),
		zap.Int("waitlisted", len(r.result.Waitlisted)),
		zap.Int64("skipped", r.result.Skipped),
		zap.Int("failed", len(r.result.Failures)+len(r.result.WaitlistFailures)),
	)
	return r.deps.Sink.Complete(context.WithoutCancel(ctx), success, r.result)
}

func asCreationError(record domain.ImportRecord, err error) *domain.CreationError {
	var creationErr *domain.CreationError
	if errors.As(err, &creationErr) {
		return creationErr
	}
	return &domain.CreationError{
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Email:     record.Email,
		Err:       err,
	}
}

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// isRowError reports whether err only affects the current record, so reading
// can continue with the next one.
func isRowError(err error) bool {
	var parseErr *csv.ParseError
	return errors.As(err, &parseErr)
}

func countRows(ctx context.Context, source ImportSource, sourcePath string) (int64, error) {
	reader, err := source.Open(ctx, sourcePath)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	rows := newCSVReader(reader)
	var total int64
	for {
		_, err := rows.Read()
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil && !isRowError(err) {
			return 0, err
		}
		total++
	}
}
