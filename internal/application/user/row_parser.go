package user

import (
	"fmt"
	"strings"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

const (
	colFirstName = iota
	colLastName
	colEmail
	colActivationDate
)

// ParseError reports a malformed row. Rows that fail to parse are skipped.
type ParseError struct {
	Columns int
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse row (%d columns): %v", e.Columns, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseRow turns one CSV row into an import record. Columns are first name,
// last name, email and an optional activation date; roles and the notify
// flag come from cfg. Email syntax is not checked here.
func ParseRow(columns []string, cfg domain.RunConfig) (domain.ImportRecord, error) {
	if len(columns) < 3 {
		return domain.ImportRecord{}, &ParseError{Columns: len(columns), Err: ErrRowTooShort}
	}

	var activationDate *domain.Date
	if len(columns) > colActivationDate && strings.TrimSpace(columns[colActivationDate]) != "" {
		d, err := domain.ParseDate(columns[colActivationDate])
		if err != nil {
			return domain.ImportRecord{}, &ParseError{Columns: len(columns), Err: err}
		}
		activationDate = &d
	}

	record, err := domain.NewImportRecord(
		strings.TrimPrefix(columns[colFirstName], "\ufeff"),
		columns[colLastName],
		columns[colEmail],
		activationDate,
		cfg.Roles,
	)
	if err != nil {
		return domain.ImportRecord{}, &ParseError{Columns: len(columns), Err: err}
	}
	record.Notify = cfg.Notify
	return record, nil
}
