package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shelf/internal/classify"
	"shelf/internal/ipc"
	"shelf/internal/logging"
	"shelf/internal/organizer"
	"shelf/internal/store"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Run a full organization pass over the watched root",
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				return runLocalPass(cmd, ctx)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Organize()
				if err != nil {
					return err
				}
				printSummary(cmd, resp.Summary)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Run the pass in-process instead of via the daemon")
	return cmd
}

// runLocalPass organizes without a daemon: useful for one-off cleanups and
// cron environments. It refuses to run while a daemon holds the database,
// which surfaces as a locked sqlite open.
func runLocalPass(cmd *cobra.Command, cmdCtx *commandContext) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}

	classifier, err := classify.New(cfg, st, logger)
	if err != nil {
		return err
	}
	engine := organizer.New(cfg, st, classifier, nil, logger)

	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- engine.Run(runCtx) }()

	summary, err := engine.Organize(runCtx)
	cancel()
	<-done
	if err != nil {
		return err
	}

	printSummary(cmd, ipc.PassSummary{
		Trigger:    string(summary.Trigger),
		Started:    summary.Started,
		Duration:   summary.Duration,
		Moved:      summary.Moved,
		Duplicates: summary.Duplicates,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
	})
	return nil
}

func printSummary(cmd *cobra.Command, summary ipc.PassSummary) {
	stdout := cmd.OutOrStdout()
	if summary.Moved+summary.Duplicates+summary.Skipped+summary.Failed == 0 {
		fmt.Fprintln(stdout, "Nothing to organize")
		return
	}
	fmt.Fprint(stdout, renderPassTable(summary))
	fmt.Fprintln(stdout)
}
