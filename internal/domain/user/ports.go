package user

import "context"

type ImportJobRepository interface {
	Enqueue(ctx context.Context, sourcePath string, cfg RunConfig) (string, error)
	GetByID(ctx context.Context, jobID string) (*ImportJob, error)
}

type WaitlistStore interface {
	Insert(ctx context.Context, record ImportRecord) (string, error)
	EntriesForDate(ctx context.Context, date Date) ([]WaitlistEntry, error)
	// DeleteByEmail removes every entry with the given email and returns the
	// removed ids, or ErrWaitlistEntryNotFound when nothing matched.
	DeleteByEmail(ctx context.Context, email string) ([]string, error)
}

// CreateUserInput is the identity-store creation payload.
type CreateUserInput struct {
	Username       string
	Email          string
	FirstName      string
	LastName       string
	Roles          []string
	ActivationDate *Date
	Enabled        bool
}

type IdentityStore interface {
	UsernameChecker
	CreateUser(ctx context.Context, in CreateUserInput) (string, error)
}
