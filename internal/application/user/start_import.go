package user

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

type StartImportUsersFromCSVInput struct {
	SourcePath string
	Roles      []string
	Notify     bool
}

type StartImportUsersFromCSVOutput struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type StartImportUsersFromCSV interface {
	Execute(ctx context.Context, in StartImportUsersFromCSVInput) (StartImportUsersFromCSVOutput, error)
}

type importJobEnqueuer interface {
	Enqueue(ctx context.Context, sourcePath string, cfg domain.RunConfig) (string, error)
}

type startImportUsersFromCSV struct {
	importJobRepo importJobEnqueuer
}

func NewStartImportUsersFromCSV(importJobRepo importJobEnqueuer) StartImportUsersFromCSV {
	return &startImportUsersFromCSV{importJobRepo: importJobRepo}
}

func (uc *startImportUsersFromCSV) Execute(ctx context.Context, in StartImportUsersFromCSVInput) (StartImportUsersFromCSVOutput, error) {
	sourcePath := strings.TrimSpace(in.SourcePath)
	if sourcePath == "" || strings.ToLower(filepath.Ext(sourcePath)) != ".csv" {
		return StartImportUsersFromCSVOutput{}, ErrInvalidImportSource
	}

	cfg, err := domain.NewRunConfig(in.Roles, in.Notify)
	if err != nil {
		if errors.Is(err, domain.ErrNoRoles) {
			return StartImportUsersFromCSVOutput{}, ErrInvalidRoles
		}
		return StartImportUsersFromCSVOutput{}, err
	}

	jobID, err := uc.importJobRepo.Enqueue(ctx, sourcePath, cfg)
	if err != nil {
		return StartImportUsersFromCSVOutput{}, fmt.Errorf("%w: %v", ErrEnqueueImportJob, err)
	}

	return StartImportUsersFromCSVOutput{
		JobID:  jobID,
		Status: domain.ImportJobQueued,
	}, nil
}
