package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shelf/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and organizer status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				runningKind := statusError
				if status.Running {
					runningKind = statusOK
				}
				fmt.Fprintln(stdout, renderStatusLine("Running", runningKind, fmt.Sprintf("%s (pid %d)", yesNo(status.Running), status.PID), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Watched root", statusInfo, status.WatchedRoot, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, status.DatabasePath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Queue depth", statusInfo, fmt.Sprintf("%d", status.QueueDepth), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Known digests", statusInfo, fmt.Sprintf("%d", status.DigestCount), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Schedules", statusInfo, fmt.Sprintf("%d", status.ScheduleCount), colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Last Pass", colorize) {
					fmt.Fprintln(stdout, line)
				}
				if status.LastPass == nil {
					fmt.Fprintln(stdout, "No pass has run yet")
					return nil
				}
				fmt.Fprint(stdout, renderPassTable(*status.LastPass))
				fmt.Fprintln(stdout)
				return nil
			})
		},
	}
}

func renderPassTable(summary ipc.PassSummary) string {
	rows := [][]string{{
		summary.Trigger,
		summary.Started.Local().Format(time.RFC3339),
		summary.Duration.Round(time.Millisecond).String(),
		fmt.Sprintf("%d", summary.Moved),
		fmt.Sprintf("%d", summary.Duplicates),
		fmt.Sprintf("%d", summary.Skipped),
		fmt.Sprintf("%d", summary.Failed),
	}}
	return renderTable(
		[]string{"Trigger", "Started", "Duration", "Moved", "Duplicates", "Skipped", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	)
}
