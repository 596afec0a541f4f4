package user_test

import (
	"testing"

	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

func TestNewImportRecordValid(t *testing.T) {
	t.Parallel()

	roles := []string{"editor", "viewer"}
	rec, err := domain.NewImportRecord(" Alice ", "Smith", "alice@example.com", nil, roles)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.FirstName != "Alice" {
		t.Fatalf("unexpected first name: %q", rec.FirstName)
	}

	roles[0] = "admin"
	if rec.Roles[0] != "editor" {
		t.Fatalf("record shares roles with caller: %v", rec.Roles)
	}
}

func TestNewImportRecordKeepsEmailAsWritten(t *testing.T) {
	t.Parallel()

	rec, err := domain.NewImportRecord("Alice", "Smith", " alice-at-example.com ", nil, []string{"editor"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Email != "alice-at-example.com" {
		t.Fatalf("unexpected email: %q", rec.Email)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		valid bool
	}{
		{email: "alice@example.com", valid: true},
		{email: "alice-at-example.com"},
		{email: "Alice Smith <alice@example.com>"},
		{email: "<alice@example.com>"},
		{email: "email"},
	}

	for _, tt := range tests {
		err := domain.ValidateEmail(tt.email)
		if tt.valid && err != nil {
			t.Fatalf("%q: expected valid, got %v", tt.email, err)
		}
		if !tt.valid && err != domain.ErrInvalidEmail {
			t.Fatalf("%q: expected ErrInvalidEmail, got %v", tt.email, err)
		}
	}
}

func TestNewImportRecordMissingField(t *testing.T) {
	t.Parallel()

	_, err := domain.NewImportRecord("Alice", "  ", "alice@example.com", nil, []string{"editor"})
	if err != domain.ErrMissingField {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestNewRunConfig(t *testing.T) {
	t.Parallel()

	cfg, err := domain.NewRunConfig([]string{"editor", " ", "viewer", "editor"}, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cfg.Roles) != 2 || cfg.Roles[0] != "editor" || cfg.Roles[1] != "viewer" {
		t.Fatalf("unexpected roles: %v", cfg.Roles)
	}
	if !cfg.Notify {
		t.Fatal("expected notify to be set")
	}

	if _, err := domain.NewRunConfig([]string{"", " "}, false); err != domain.ErrNoRoles {
		t.Fatalf("expected ErrNoRoles, got %v", err)
	}
}

func TestRolesRoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	raw, err := domain.EncodeRoles([]string{"viewer", "editor"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	roles, err := domain.DecodeRoles(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(roles) != 2 || roles[0] != "viewer" || roles[1] != "editor" {
		t.Fatalf("unexpected roles: %v", roles)
	}

	legacy, err := domain.DecodeRoles("editor, viewer")
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if len(legacy) != 2 || legacy[1] != "viewer" {
		t.Fatalf("unexpected legacy roles: %v", legacy)
	}
}
