package user

import "errors"

var (
	ErrInvalidImportSource = errors.New("invalid import source")
	ErrInvalidRoles        = errors.New("invalid roles")
	ErrEnqueueImportJob    = errors.New("failed to enqueue import job")
	ErrInvalidJobID        = errors.New("invalid import job id")
	ErrImportJobNotFound   = errors.New("import job not found")
	ErrGetImportJob        = errors.New("failed to get import job")

	ErrRowTooShort = errors.New("row has fewer than 3 columns")
	ErrOpenSource  = errors.New("failed to open import source")
	ErrReadSource  = errors.New("failed to read import source")
	ErrRunFinished = errors.New("import run already finished")

	ErrSweepInProgress  = errors.New("waitlist sweep already in progress")
	ErrSweepLock        = errors.New("failed to acquire sweep lock")
	ErrListWaitlist     = errors.New("failed to list waitlist entries")
	ErrInvalidSweepDate = errors.New("invalid sweep date")
)
