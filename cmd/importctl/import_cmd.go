package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	domain "github.com/mohammadpnp/csv-user-import/internal/domain/user"
	infrafile "github.com/mohammadpnp/csv-user-import/internal/infrastructure/file"
	"github.com/spf13/cobra"
)

type importOptions struct {
	roles     []string
	notify    bool
	today     string
	chunkSize int
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import users from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.roles, "roles", nil, "Roles granted to every imported user (required)")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "Send a notification for every created user")
	cmd.Flags().StringVar(&opts.today, "today", "", "Override today's date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Rows per step (default from IMPORT_CHUNK_SIZE)")
	_ = cmd.MarkFlagRequired("roles")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, path string, opts importOptions) error {
	runCfg, err := domain.NewRunConfig(opts.roles, opts.notify)
	if err != nil {
		return fmt.Errorf("invalid --roles: %w", err)
	}

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	today := domain.Today(time.Now(), e.cfg.Location)
	if opts.today != "" {
		if today, err = domain.ParseDate(opts.today); err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
	}

	chunkSize := opts.chunkSize
	if chunkSize <= 0 {
		chunkSize = e.cfg.ImportChunkSize
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	runner, err := app.NewRunner(ctx, app.RunnerDeps{
		Source:   infrafile.NewLocalSource(filepath.Dir(absPath)),
		Creator:  e.creator,
		Waitlist: e.waitlist,
		Sink:     &consoleSink{out: out},
		Notifier: app.LogNotifier{Logger: e.logger.Named("notifier")},
		Logger:   e.logger.Named("runner"),
	}, absPath, app.RunnerConfig{
		Run:       runCfg,
		Today:     today,
		ChunkSize: chunkSize,
	})
	if err != nil {
		return err
	}
	defer runner.Close()

	for {
		progress, err := runner.Step(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				_ = runner.Abort(context.WithoutCancel(ctx))
				return fmt.Errorf("import interrupted after %d of %d rows", progress.Processed, progress.Total)
			}
			return err
		}
		if progress.Done {
			return nil
		}
	}
}

// consoleSink prints progress lines and a final report.
type consoleSink struct {
	out io.Writer
}

func (s *consoleSink) ReportProgress(_ context.Context, p app.Progress) error {
	_, err := fmt.Fprintf(s.out, "processed %d/%d (created %d, waitlisted %d, skipped %d, failed %d)\n",
		p.Processed, p.Total, p.Created, p.Waitlisted, p.Skipped, p.Failed)
	return err
}

func (s *consoleSink) Complete(_ context.Context, success bool, result domain.RunResult) error {
	status := "finished"
	if !success {
		status = "aborted"
	}
	fmt.Fprintf(s.out, "import %s: %d created, %d waitlisted, %d skipped, %d failed\n",
		status, len(result.Created), len(result.Waitlisted), result.Skipped,
		len(result.Failures)+len(result.WaitlistFailures))

	for _, failure := range result.Failures {
		fmt.Fprintf(s.out, "  row %d: %v\n", failure.RowIndex+1, failure.Err)
	}
	for _, failure := range result.WaitlistFailures {
		fmt.Fprintf(s.out, "  row %d: could not add %s to waitlist: %v\n", failure.RowIndex+1, failure.Record.Email, failure.Err)
	}
	if len(result.Waitlisted) > 0 {
		emails := make([]string, 0, len(result.Waitlisted))
		for _, outcome := range result.Waitlisted {
			emails = append(emails, outcome.Record.Email)
		}
		fmt.Fprintf(s.out, "waitlisted: %s\n", strings.Join(emails, ", "))
	}
	return nil
}
