package user_test

import (
	"testing"

	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	"github.com/stretchr/testify/require"
)

func TestParseRow(t *testing.T) {
	t.Parallel()

	cfg := mustRunConfig("member", "reader")

	tests := []struct {
		name      string
		columns   []string
		wantErr   error
		wantDate  string
		wantFirst string
		wantEmail string
	}{
		{name: "without date", columns: []string{"Jane", "Doe", "jane@x.com"}, wantFirst: "Jane", wantEmail: "jane@x.com"},
		{name: "empty date column", columns: []string{"Jane", "Doe", "jane@x.com", ""}, wantFirst: "Jane", wantEmail: "jane@x.com"},
		{name: "with date", columns: []string{"Jane", "Doe", "jane@x.com", "2024-01-17"}, wantDate: "2024-01-17", wantFirst: "Jane", wantEmail: "jane@x.com"},
		{name: "slash date", columns: []string{"Jane", "Doe", "jane@x.com", "2024/01/17"}, wantDate: "2024-01-17", wantFirst: "Jane", wantEmail: "jane@x.com"},
		{name: "byte order mark", columns: []string{"\ufeffJane", "Doe", "jane@x.com"}, wantFirst: "Jane", wantEmail: "jane@x.com"},
		{name: "extra columns ignored", columns: []string{"Jane", "Doe", "jane@x.com", "", "extra"}, wantFirst: "Jane", wantEmail: "jane@x.com"},
		{name: "email without at sign is left to creation", columns: []string{"Jane", "Doe", "jane-at-x"}, wantFirst: "Jane", wantEmail: "jane-at-x"},
		{name: "display name email is left to creation", columns: []string{"Jane", "Doe", "Jane Doe <jane@x.com>"}, wantFirst: "Jane", wantEmail: "Jane Doe <jane@x.com>"},
		{name: "header row is left to creation", columns: []string{"first_name", "last_name", "email"}, wantFirst: "first_name", wantEmail: "email"},
		{name: "too short", columns: []string{"Bad", "Row"}, wantErr: app.ErrRowTooShort},
		{name: "bad date", columns: []string{"Jane", "Doe", "jane@x.com", "tomorrow"}, wantErr: domain.ErrInvalidDate},
		{name: "blank name", columns: []string{" ", "Doe", "jane@x.com"}, wantErr: domain.ErrMissingField},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record, err := app.ParseRow(tt.columns, cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var parseErr *app.ParseError
				require.ErrorAs(t, err, &parseErr)
				require.Equal(t, len(tt.columns), parseErr.Columns)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantFirst, record.FirstName)
			require.Equal(t, tt.wantEmail, record.Email)
			if tt.wantDate == "" {
				require.Nil(t, record.ActivationDate)
			} else {
				require.NotNil(t, record.ActivationDate)
				require.Equal(t, tt.wantDate, record.ActivationDate.String())
			}
			require.Equal(t, []string{"member", "reader"}, record.Roles)
			require.False(t, record.Notify)
		})
	}
}

func TestParseRowCarriesNotifyFlag(t *testing.T) {
	t.Parallel()

	cfg, err := domain.NewRunConfig([]string{"member"}, true)
	require.NoError(t, err)

	record, err := app.ParseRow([]string{"Jane", "Doe", "jane@x.com", "2099-01-01"}, cfg)
	require.NoError(t, err)
	require.True(t, record.Notify)
}
