package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shelf/internal/ipc"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage scheduled organization passes",
	}
	scheduleCmd.AddCommand(newScheduleAddCommand(ctx))
	scheduleCmd.AddCommand(newScheduleListCommand(ctx))
	scheduleCmd.AddCommand(newScheduleRemoveCommand(ctx))
	return scheduleCmd
}

func newScheduleAddCommand(ctx *commandContext) *cobra.Command {
	var daily string
	var weekly string
	var at string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a scheduled pass",
		Example: `  shelf schedule add --daily 22:00
  shelf schedule add --weekly sat@08:00
  shelf schedule add --at 2026-09-01T07:00:00Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildScheduleRequest(daily, weekly, at)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ScheduleAdd(req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added schedule %s: %s (next fire %s)\n",
					resp.Entry.ID, resp.Entry.Describe,
					resp.Entry.NextFire.Local().Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&daily, "daily", "", "Fire every day at HH:MM")
	cmd.Flags().StringVar(&weekly, "weekly", "", "Fire weekly, as weekday@HH:MM (e.g. sat@08:00)")
	cmd.Flags().StringVar(&at, "at", "", "Fire once at an RFC3339 timestamp")
	return cmd
}

// buildScheduleRequest converts the mutually exclusive cadence flags into a
// wire request.
func buildScheduleRequest(daily, weekly, at string) (ipc.ScheduleAddRequest, error) {
	daily = strings.TrimSpace(daily)
	weekly = strings.TrimSpace(weekly)
	at = strings.TrimSpace(at)

	set := 0
	for _, v := range []string{daily, weekly, at} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return ipc.ScheduleAddRequest{}, errors.New("exactly one of --daily, --weekly, or --at is required")
	}

	switch {
	case daily != "":
		return ipc.ScheduleAddRequest{Cadence: "daily", TimeOfDay: daily}, nil
	case weekly != "":
		day, timeOfDay, ok := strings.Cut(weekly, "@")
		if !ok {
			return ipc.ScheduleAddRequest{}, fmt.Errorf("weekly schedule %q: want weekday@HH:MM", weekly)
		}
		return ipc.ScheduleAddRequest{
			Cadence:   "weekly",
			Weekday:   strings.TrimSpace(day),
			TimeOfDay: strings.TrimSpace(timeOfDay),
		}, nil
	default:
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return ipc.ScheduleAddRequest{}, fmt.Errorf("one-shot time %q: %w", at, err)
		}
		return ipc.ScheduleAddRequest{Cadence: "once", At: parsed}, nil
	}
}

func newScheduleListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ScheduleList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Entries) == 0 {
					fmt.Fprintln(stdout, "No schedules configured")
					return nil
				}
				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					rows = append(rows, []string{
						entry.ID,
						entry.Describe,
						entry.NextFire.Local().Format(time.RFC3339),
					})
				}
				fmt.Fprint(stdout, renderTable(
					[]string{"ID", "Cadence", "Next Fire"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintln(stdout)
				return nil
			})
		},
	}
}

func newScheduleRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a scheduled pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ScheduleRemove(args[0])
				if err != nil {
					return err
				}
				if resp.Removed {
					fmt.Fprintln(cmd.OutOrStdout(), "Schedule removed")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "No schedule with id %s\n", args[0])
				}
				return nil
			})
		},
	}
}
