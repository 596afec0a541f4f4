package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ImportJobRepository struct {
	db *gorm.DB
}

func NewImportJobRepository(db *gorm.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

func (r *ImportJobRepository) Enqueue(ctx context.Context, sourcePath string, cfg domain.RunConfig) (string, error) {
	roles, err := domain.EncodeRoles(cfg.Roles)
	if err != nil {
		return "", fmt.Errorf("encode roles: %w", err)
	}

	job := models.ImportJob{
		SourcePath: sourcePath,
		Status:     domain.ImportJobQueued,
		Roles:      roles,
		Notify:     cfg.Notify,
		Failures:   "[]",
	}

	if err := r.db.WithContext(ctx).Create(&job).Error; err != nil {
		return "", fmt.Errorf("create import job: %w", err)
	}

	return job.ID, nil
}

func (r *ImportJobRepository) GetByID(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	var row models.ImportJob

	err := r.db.WithContext(ctx).First(&row, "id = ?", jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrImportJobNotFound
		}
		return nil, fmt.Errorf("get import job by id: %w", err)
	}

	return toDomainImportJob(row)
}

// ClaimNext picks the oldest queued job, or a running job whose lease ran
// out, and leases it to the caller. It returns nil when nothing is claimable.
func (r *ImportJobRepository) ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.ImportJob, error) {
	var claimed *domain.ImportJob

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.ImportJob
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? OR (status = ? AND lease_expires_at < NOW())", domain.ImportJobQueued, domain.ImportJobRunning).
			Order("created_at").
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("select claimable import job: %w", err)
		}

		now := time.Now().UTC()
		leaseExpiresAt := now.Add(leaseDuration)
		updates := map[string]any{
			"status":           domain.ImportJobRunning,
			"attempts":         gorm.Expr("attempts + 1"),
			"heartbeat_at":     now,
			"lease_expires_at": leaseExpiresAt,
			"started_at":       gorm.Expr("COALESCE(started_at, ?)", now),
			"updated_at":       now,
		}
		if err := tx.Model(&models.ImportJob{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("lease import job: %w", err)
		}

		row.Status = domain.ImportJobRunning
		row.Attempts++
		job, err := toDomainImportJob(row)
		if err != nil {
			return err
		}
		claimed = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *ImportJobRepository) Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ? AND status = ?", jobID, domain.ImportJobRunning).
		Updates(map[string]any{
			"heartbeat_at":     now,
			"lease_expires_at": now.Add(leaseDuration),
			"updated_at":       now,
		})
	if res.Error != nil {
		return fmt.Errorf("heartbeat import job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrImportJobNotFound
	}
	return nil
}

func (r *ImportJobRepository) UpdateProgress(ctx context.Context, jobID string, progress domain.ImportProgress) error {
	err := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"progress_processed": progress.ProcessedCount,
			"progress_total":     progress.TotalCount,
			"created_count":      progress.CreatedCount,
			"waitlisted_count":   progress.WaitlistedCount,
			"skipped_count":      progress.SkippedCount,
			"failed_count":       progress.FailedCount,
			"updated_at":         time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("update import job progress: %w", err)
	}
	return nil
}

func (r *ImportJobRepository) Complete(ctx context.Context, jobID string, summary domain.ImportSummary) error {
	failures := summary.Failures
	if failures == nil {
		failures = []domain.ImportFailure{}
	}
	encoded, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("encode import failures: %w", err)
	}

	now := time.Now().UTC()
	err = r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":             domain.ImportJobSucceeded,
			"progress_processed": summary.ProcessedCount,
			"progress_total":     summary.TotalCount,
			"created_count":      summary.CreatedCount,
			"waitlisted_count":   summary.WaitlistedCount,
			"skipped_count":      summary.SkippedCount,
			"failed_count":       summary.FailedCount,
			"failures":           string(encoded),
			"error_message":      nil,
			"lease_expires_at":   nil,
			"finished_at":        now,
			"updated_at":         now,
		}).Error
	if err != nil {
		return fmt.Errorf("complete import job: %w", err)
	}
	return nil
}

func (r *ImportJobRepository) Requeue(ctx context.Context, jobID string, reason string) error {
	err := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":           domain.ImportJobQueued,
			"error_message":    reason,
			"lease_expires_at": nil,
			"updated_at":       time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("requeue import job: %w", err)
	}
	return nil
}

func (r *ImportJobRepository) Fail(ctx context.Context, jobID string, reason string) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":           domain.ImportJobFailed,
			"error_message":    reason,
			"lease_expires_at": nil,
			"finished_at":      now,
			"updated_at":       now,
		}).Error
	if err != nil {
		return fmt.Errorf("fail import job: %w", err)
	}
	return nil
}

func toDomainImportJob(row models.ImportJob) (*domain.ImportJob, error) {
	roles, err := domain.DecodeRoles(row.Roles)
	if err != nil {
		return nil, fmt.Errorf("decode import job roles: %w", err)
	}

	var failures []domain.ImportFailure
	if row.Failures != "" {
		if err := json.Unmarshal([]byte(row.Failures), &failures); err != nil {
			return nil, fmt.Errorf("decode import job failures: %w", err)
		}
	}

	job := &domain.ImportJob{
		ID:          row.ID,
		SourcePath:  row.SourcePath,
		Status:      row.Status,
		Roles:       roles,
		Notify:      row.Notify,
		Attempts:    row.Attempts,
		MaxAttempts: row.MaxAttempts,
		Progress: domain.ImportProgress{
			ProcessedCount:  row.ProgressProcessed,
			TotalCount:      row.ProgressTotal,
			CreatedCount:    row.CreatedCount,
			WaitlistedCount: row.WaitlistedCount,
			SkippedCount:    row.SkippedCount,
			FailedCount:     row.FailedCount,
		},
		Failures:   failures,
		CreatedAt:  row.CreatedAt,
		FinishedAt: row.FinishedAt,
	}
	if row.ErrorMessage != nil {
		job.ErrorMessage = *row.ErrorMessage
	}
	return job, nil
}
