package main

import (
	"context"
	"fmt"
	"io"
	"time"

	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Create users for waitlist entries due on a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), cmd.OutOrStdout(), date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Activation date to sweep (YYYY-MM-DD, default today)")

	return cmd
}

func runSweep(ctx context.Context, out io.Writer, date string) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	sweeper := app.NewSweeper(e.waitlist, e.creator, e.locker, e.logger.Named("sweeper"),
		app.WithSweepNotifier(app.LogNotifier{Logger: e.logger.Named("notifier")}))

	result, err := app.NewSweepWaitlist(sweeper, e.cfg.Location, time.Now).Execute(ctx, app.SweepWaitlistInput{Date: date})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "sweep %s: %d created, %d errors, %d duplicates removed\n",
		result.Date, result.Created, result.Errors, result.Removed)
	return nil
}
