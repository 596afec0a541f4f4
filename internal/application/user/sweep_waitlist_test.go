package user_test

import (
	"context"
	"testing"

	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	"github.com/stretchr/testify/require"
)

func TestSweepWaitlistDefaultsToToday(t *testing.T) {
	t.Parallel()

	sweeper := &recordingSweeper{}
	uc := app.NewSweepWaitlist(sweeper, nil, fixedNow)

	out, err := uc.Execute(context.Background(), app.SweepWaitlistInput{})
	require.NoError(t, err)
	require.Equal(t, "2024-01-10", out.Date)
	require.Equal(t, []string{"2024-01-10"}, sweeper.sweptDates())
}

func TestSweepWaitlistUsesRequestedDate(t *testing.T) {
	t.Parallel()

	store := newFakeIdentityStore()
	waitlist := &memWaitlist{}
	seedWaitlist(t, waitlist,
		datedRecord(t, "Jane", "Doe", "jane@x.com", "2024-01-17"),
		datedRecord(t, "Jane", "Doe", "jane@x.com", "2024-01-17"),
	)

	uc := app.NewSweepWaitlist(app.NewSweeper(waitlist, app.NewCreator(store, nil), nil, nil), nil, fixedNow)

	out, err := uc.Execute(context.Background(), app.SweepWaitlistInput{Date: "2024-01-17"})
	require.NoError(t, err)
	require.Equal(t, app.SweepWaitlistOutput{Date: "2024-01-17", Created: 1, Errors: 0, Removed: 1}, out)
}

func TestSweepWaitlistRejectsBadDate(t *testing.T) {
	t.Parallel()

	sweeper := &recordingSweeper{}
	_, err := app.NewSweepWaitlist(sweeper, nil, fixedNow).Execute(context.Background(), app.SweepWaitlistInput{Date: "soon"})
	require.ErrorIs(t, err, app.ErrInvalidSweepDate)
	require.Empty(t, sweeper.sweptDates())
}

func TestSweepWaitlistPassesThroughInProgress(t *testing.T) {
	t.Parallel()

	sweeper := &recordingSweeper{errOn: map[string]error{"2024-01-10": app.ErrSweepInProgress}}
	_, err := app.NewSweepWaitlist(sweeper, nil, fixedNow).Execute(context.Background(), app.SweepWaitlistInput{})
	require.ErrorIs(t, err, app.ErrSweepInProgress)
}
