package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/oklog/ulid/v2"
)

// WaitlistRepository stores deferred import records in user_import_waitlist.
// Roles are kept as an ordered JSON array next to the run's notify flag.
type WaitlistRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewWaitlistRepository(db *sql.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db, now: time.Now}
}

func (r *WaitlistRepository) Insert(ctx context.Context, record domain.ImportRecord) (string, error) {
	if !record.HasActivationDate() {
		return "", fmt.Errorf("insert waitlist entry: %w", domain.ErrInvalidDate)
	}

	roles, err := domain.EncodeRoles(record.Roles)
	if err != nil {
		return "", fmt.Errorf("encode roles: %w", err)
	}

	now := r.now().UTC()
	id, err := newULID(now)
	if err != nil {
		return "", fmt.Errorf("generate waitlist id: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO user_import_waitlist (id, first_name, last_name, email, activation_date, roles, notify, created_at)
VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8)
`, id, record.FirstName, record.LastName, record.Email, record.ActivationDate.String(), roles, record.Notify, now)
	if err != nil {
		return "", fmt.Errorf("insert waitlist entry: %w", err)
	}
	return id, nil
}

func (r *WaitlistRepository) EntriesForDate(ctx context.Context, date domain.Date) ([]domain.WaitlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, first_name, last_name, email, activation_date, roles, notify, created_at
FROM user_import_waitlist
WHERE activation_date = $1::date
ORDER BY created_at, id
`, date.String())
	if err != nil {
		return nil, fmt.Errorf("query waitlist entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.WaitlistEntry
	for rows.Next() {
		var (
			entry          domain.WaitlistEntry
			activationDate time.Time
			rawRoles       string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Record.FirstName,
			&entry.Record.LastName,
			&entry.Record.Email,
			&activationDate,
			&rawRoles,
			&entry.Record.Notify,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan waitlist entry: %w", err)
		}

		roles, err := domain.DecodeRoles(rawRoles)
		if err != nil {
			return nil, fmt.Errorf("decode roles of waitlist entry %s: %w", entry.ID, err)
		}
		entry.Record.Roles = roles

		d := domain.NewDate(activationDate)
		entry.Record.ActivationDate = &d

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate waitlist entries: %w", err)
	}
	return entries, nil
}

// DeleteByEmail removes every entry for email, so a user listed twice is
// never promoted twice.
func (r *WaitlistRepository) DeleteByEmail(ctx context.Context, email string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `DELETE FROM user_import_waitlist WHERE email = $1 RETURNING id`, email)
	if err != nil {
		return nil, fmt.Errorf("delete waitlist entries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted waitlist id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted waitlist ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, domain.ErrWaitlistEntryNotFound
	}
	return ids, nil
}

func newULID(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
