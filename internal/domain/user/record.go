package user

import (
	"net/mail"
	"strings"
)

// ImportRecord is one normalized row of an import file.
type ImportRecord struct {
	FirstName      string
	LastName       string
	Email          string
	ActivationDate *Date
	Roles          []string
	// Notify is the run's notification flag, kept with deferred records.
	Notify bool
}

// NewImportRecord trims the fields of a record and checks they are present.
// Email syntax is left to ValidateEmail at creation time. Roles are copied so
// the record never shares its slice with the caller.
func NewImportRecord(firstName, lastName, email string, activationDate *Date, roles []string) (ImportRecord, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)

	if firstName == "" || lastName == "" || email == "" {
		return ImportRecord{}, ErrMissingField
	}
	if len(roles) == 0 {
		return ImportRecord{}, ErrNoRoles
	}

	return ImportRecord{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		ActivationDate: activationDate,
		Roles:          append([]string(nil), roles...),
	}, nil
}

// ValidateEmail accepts a bare address only. Display-name forms such as
// "Jane Doe <jane@x.com>" parse as addresses but are rejected, since the
// stored email would not be the address itself.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return ErrInvalidEmail
	}
	return nil
}

// HasActivationDate reports whether the record carries a non-zero activation date.
func (r ImportRecord) HasActivationDate() bool {
	return r.ActivationDate != nil && !r.ActivationDate.IsZero()
}

// RunConfig is the per-run configuration shared read-only by every row.
type RunConfig struct {
	Roles  []string
	Notify bool
}

// NewRunConfig drops blank and duplicate role ids, keeping first-seen order.
func NewRunConfig(roles []string, notify bool) (RunConfig, error) {
	seen := make(map[string]struct{}, len(roles))
	cleaned := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		cleaned = append(cleaned, role)
	}
	if len(cleaned) == 0 {
		return RunConfig{}, ErrNoRoles
	}
	return RunConfig{Roles: cleaned, Notify: notify}, nil
}
