package user

import "time"

const (
	ImportJobQueued    = "queued"
	ImportJobRunning   = "running"
	ImportJobSucceeded = "succeeded"
	ImportJobFailed    = "failed"
)

type ImportJob struct {
	ID           string
	SourcePath   string
	Status       string
	Roles        []string
	Notify       bool
	Attempts     int
	MaxAttempts  int
	Progress     ImportProgress
	Failures     []ImportFailure
	ErrorMessage string
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// ImportFailure is a row the identity store or waitlist did not accept.
type ImportFailure struct {
	RowIndex int64  `json:"row_index"`
	Email    string `json:"email"`
	Reason   string `json:"reason"`
}

type ImportProgress struct {
	ProcessedCount  int64
	TotalCount      int64
	CreatedCount    int64
	WaitlistedCount int64
	SkippedCount    int64
	FailedCount     int64
}

type ImportSummary struct {
	ProcessedCount  int64
	TotalCount      int64
	CreatedCount    int64
	WaitlistedCount int64
	SkippedCount    int64
	FailedCount     int64
	Failures        []ImportFailure
}

// Progress returns the counters of s without the failure details.
func (s ImportSummary) Progress() ImportProgress {
	return ImportProgress{
		ProcessedCount:  s.ProcessedCount,
		TotalCount:      s.TotalCount,
		CreatedCount:    s.CreatedCount,
		WaitlistedCount: s.WaitlistedCount,
		SkippedCount:    s.SkippedCount,
		FailedCount:     s.FailedCount,
	}
}
