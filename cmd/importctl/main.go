package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "importctl",
		Short:         "Import users from CSV files and promote due waitlist entries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newImportCmd(), newSweepCmd())
	return cmd
}
