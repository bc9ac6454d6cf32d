package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"shelf/internal/ipc"
)

func newOutcomesCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "outcomes",
		Short: "Show recent processing results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Outcomes(limit)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Records) == 0 {
					fmt.Fprintln(stdout, "No outcomes recorded yet")
					return nil
				}
				rows := make([][]string, 0, len(resp.Records))
				for _, rec := range resp.Records {
					detail := rec.Destination
					if detail == "" {
						detail = rec.Reason
					}
					rows = append(rows, []string{
						rec.RecordedAt.Local().Format(time.RFC3339),
						filepath.Base(rec.Path),
						rec.Action,
						detail,
					})
				}
				fmt.Fprint(stdout, renderTable(
					[]string{"When", "File", "Action", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintln(stdout)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of results to show")
	return cmd
}
