package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
)

func TestConsoleSinkReport(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sink := &consoleSink{out: &out}

	if err := sink.ReportProgress(context.Background(), app.Progress{Processed: 2, Total: 3, Created: 1, Waitlisted: 1}); err != nil {
		t.Fatalf("report progress: %v", err)
	}

	jane := domain.ImportRecord{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"}
	bob := domain.ImportRecord{FirstName: "Bob", LastName: "Two", Email: "bob@x.com"}
	err := sink.Complete(context.Background(), true, domain.RunResult{
		Created:    []domain.Outcome{{ID: "u1", Record: bob}},
		Waitlisted: []domain.Outcome{{ID: "w1", Record: jane}},
		Skipped:    1,
		Failures: []domain.CreationFailure{{
			RowIndex: 2,
			Record:   bob,
			Err:      &domain.CreationError{FirstName: "Bob", LastName: "Two", Username: "bobtwo", Email: "bob@x.com", Err: errors.New("conflict")},
		}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"processed 2/3",
		"import finished: 1 created, 1 waitlisted, 1 skipped, 1 failed",
		"row 3: could not create user Bob Two (username: bobtwo)",
		"waitlisted: jane@x.com",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestImportCommandRequiresRoles(t *testing.T) {
	t.Parallel()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"import", "users.csv"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "roles") {
		t.Fatalf("expected missing roles error, got %v", err)
	}
}
