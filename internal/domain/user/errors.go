package user

import "errors"

var (
	ErrInvalidEmail          = errors.New("invalid email")
	ErrMissingField          = errors.New("missing required field")
	ErrNoRoles               = errors.New("at least one role is required")
	ErrInvalidDate           = errors.New("invalid activation date")
	ErrWaitlistEntryNotFound = errors.New("waitlist entry not found")
	ErrConflict              = errors.New("conflict")
	ErrImportJobNotFound     = errors.New("import job not found")
	ErrLockHeld              = errors.New("lock is held by another owner")
)

// ConflictError reports a uniqueness violation in the identity store for a
// logical field such as "username" or "email".
type ConflictError struct {
	Field string
}

func (e ConflictError) Error() string {
	if e.Field == "" {
		return ErrConflict.Error()
	}
	return ErrConflict.Error() + ": " + e.Field
}

func (e ConflictError) Unwrap() error { return ErrConflict }
