package user

import "fmt"

// Outcome pairs a stored identity (user id or waitlist entry id) with the
// record it was created from.
type Outcome struct {
	ID     string
	Record ImportRecord
}

// CreationError carries the context of a rejected identity-store creation.
type CreationError struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Err       error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("could not create user %s %s (username: %s) (email: %s): %v",
		e.FirstName, e.LastName, e.Username, e.Email, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// CreationFailure is a row the identity store did not accept.
type CreationFailure struct {
	RowIndex int64
	Record   ImportRecord
	Err      *CreationError
}

// WaitlistFailure is a deferred record the waitlist store did not accept.
// The record is lost for this run.
type WaitlistFailure struct {
	RowIndex int64
	Record   ImportRecord
	Err      error
}

// RunResult aggregates the outcome of one import run in row order.
type RunResult struct {
	Created          []Outcome
	Waitlisted       []Outcome
	Skipped          int64
	Failures         []CreationFailure
	WaitlistFailures []WaitlistFailure
}

// SweepFailure is a due waitlist entry that could not be created. The entry
// stays on the waitlist.
type SweepFailure struct {
	Entry WaitlistEntry
	Err   error
}

// SweepResult is the outcome of promoting the entries due on Date. Removed
// holds entries deleted together with an earlier entry for the same email.
type SweepResult struct {
	Date    Date
	Success []WaitlistEntry
	Errors  []SweepFailure
	Removed []WaitlistEntry
}
