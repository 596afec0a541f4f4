package user_test

import (
	"context"
	"errors"
	"testing"

	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	path string
	cfg  domain.RunConfig
	err  error
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, sourcePath string, cfg domain.RunConfig) (string, error) {
	f.path = sourcePath
	f.cfg = cfg
	if f.err != nil {
		return "", f.err
	}
	return "4f6f2b5e-1d53-4c43-9a3a-0b8a1c1e2d3f", nil
}

func TestStartImportUsersFromCSVEnqueuesJob(t *testing.T) {
	t.Parallel()

	repo := &fakeEnqueuer{}
	uc := app.NewStartImportUsersFromCSV(repo)

	out, err := uc.Execute(context.Background(), app.StartImportUsersFromCSVInput{
		SourcePath: " imports/users.CSV ",
		Roles:      []string{"member", " member", "reader"},
		Notify:     true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.ImportJobQueued, out.Status)
	require.NotEmpty(t, out.JobID)
	require.Equal(t, "imports/users.CSV", repo.path)
	require.Equal(t, []string{"member", "reader"}, repo.cfg.Roles)
	require.True(t, repo.cfg.Notify)
}

func TestStartImportUsersFromCSVValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      app.StartImportUsersFromCSVInput
		wantErr error
	}{
		{name: "empty path", in: app.StartImportUsersFromCSVInput{Roles: []string{"member"}}, wantErr: app.ErrInvalidImportSource},
		{name: "json file", in: app.StartImportUsersFromCSVInput{SourcePath: "users.json", Roles: []string{"member"}}, wantErr: app.ErrInvalidImportSource},
		{name: "no roles", in: app.StartImportUsersFromCSVInput{SourcePath: "users.csv"}, wantErr: app.ErrInvalidRoles},
		{name: "blank roles", in: app.StartImportUsersFromCSVInput{SourcePath: "users.csv", Roles: []string{" "}}, wantErr: app.ErrInvalidRoles},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &fakeEnqueuer{}
			_, err := app.NewStartImportUsersFromCSV(repo).Execute(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, repo.path, "did not expect enqueue")
		})
	}
}

func TestStartImportUsersFromCSVWrapsEnqueueError(t *testing.T) {
	t.Parallel()

	uc := app.NewStartImportUsersFromCSV(&fakeEnqueuer{err: errors.New("db down")})

	_, err := uc.Execute(context.Background(), app.StartImportUsersFromCSVInput{
		SourcePath: "users.csv",
		Roles:      []string{"member"},
	})
	require.ErrorIs(t, err, app.ErrEnqueueImportJob)
}
