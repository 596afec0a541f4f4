package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

const pgUniqueViolation = "23505"

// IdentityStore keeps created users in the users table. Usernames and emails
// are unique; violations come back as domain.ConflictError.
type IdentityStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewIdentityStore(pool *pgxpool.Pool) *IdentityStore {
	return &IdentityStore{pool: pool, now: time.Now}
}

func (s *IdentityStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup username: %w", err)
	}
	return exists, nil
}

func (s *IdentityStore) CreateUser(ctx context.Context, in domain.CreateUserInput) (string, error) {
	now := s.now().UTC()
	id, err := newULID(now)
	if err != nil {
		return "", fmt.Errorf("generate user id: %w", err)
	}

	var activationDate *time.Time
	if in.ActivationDate != nil {
		t := in.ActivationDate.Time()
		activationDate = &t
	}

	roles := in.Roles
	if roles == nil {
		roles = []string{}
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO users (id, username, email, first_name, last_name, roles, activation_date, enabled, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, id, in.Username, in.Email, in.FirstName, in.LastName, roles, activationDate, in.Enabled, now)
	if err != nil {
		if field, ok := classifyUniqueViolation(err); ok {
			return "", domain.ConflictError{Field: field}
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// GetByUsername returns the id and stored creation payload of username.
func (s *IdentityStore) GetByUsername(ctx context.Context, username string) (string, domain.CreateUserInput, error) {
	var (
		id             string
		in             domain.CreateUserInput
		activationDate *time.Time
	)
	err := s.pool.QueryRow(ctx, `
SELECT id, username, email, first_name, last_name, roles, activation_date, enabled
FROM users
WHERE username = $1
`, username).Scan(&id, &in.Username, &in.Email, &in.FirstName, &in.LastName, &in.Roles, &activationDate, &in.Enabled)
	if err != nil {
		return "", domain.CreateUserInput{}, fmt.Errorf("get user by username: %w", err)
	}
	if activationDate != nil {
		d := domain.NewDate(*activationDate)
		in.ActivationDate = &d
	}
	return id, in, nil
}

func classifyUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return "", false
	}

	constraint := strings.ToLower(pgErr.ConstraintName)
	switch {
	case strings.Contains(constraint, "username"):
		return "username", true
	case strings.Contains(constraint, "email"):
		return "email", true
	default:
		return "unique", true
	}
}
