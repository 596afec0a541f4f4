package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

type GetImportJobInput struct {
	ID string
}

type ImportJobProgressOutput struct {
	Processed  int64 `json:"processed"`
	Total      int64 `json:"total"`
	Created    int64 `json:"created"`
	Waitlisted int64 `json:"waitlisted"`
	Skipped    int64 `json:"skipped"`
	Failed     int64 `json:"failed"`
}

type GetImportJobOutput struct {
	ID         string                  `json:"id"`
	SourcePath string                  `json:"source_path"`
	Status     string                  `json:"status"`
	Roles      []string                `json:"roles"`
	Notify     bool                    `json:"notify"`
	Attempts   int                     `json:"attempts"`
	Progress   ImportJobProgressOutput `json:"progress"`
	Failures   []domain.ImportFailure  `json:"failures"`
	Error      string                  `json:"error,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	FinishedAt *time.Time              `json:"finished_at,omitempty"`
}

type GetImportJob interface {
	Execute(ctx context.Context, in GetImportJobInput) (GetImportJobOutput, error)
}

type importJobGetter interface {
	GetByID(ctx context.Context, jobID string) (*domain.ImportJob, error)
}

type getImportJob struct {
	repo importJobGetter
}

func NewGetImportJob(repo importJobGetter) GetImportJob {
	return &getImportJob{repo: repo}
}

func (uc *getImportJob) Execute(ctx context.Context, in GetImportJobInput) (GetImportJobOutput, error) {
	if _, err := uuid.Parse(in.ID); err != nil {
		return GetImportJobOutput{}, ErrInvalidJobID
	}

	job, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrImportJobNotFound) {
			return GetImportJobOutput{}, ErrImportJobNotFound
		}
		return GetImportJobOutput{}, fmt.Errorf("%w: %v", ErrGetImportJob, err)
	}

	roles := job.Roles
	if roles == nil {
		roles = []string{}
	}
	failures := job.Failures
	if failures == nil {
		failures = []domain.ImportFailure{}
	}

	return GetImportJobOutput{
		ID:         job.ID,
		SourcePath: job.SourcePath,
		Status:     job.Status,
		Roles:      roles,
		Notify:     job.Notify,
		Attempts:   job.Attempts,
		Progress: ImportJobProgressOutput{
			Processed:  job.Progress.ProcessedCount,
			Total:      job.Progress.TotalCount,
			Created:    job.Progress.CreatedCount,
			Waitlisted: job.Progress.WaitlistedCount,
			Skipped:    job.Progress.SkippedCount,
			Failed:     job.Progress.FailedCount,
		},
		Failures:   failures,
		Error:      job.ErrorMessage,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}, nil
}
