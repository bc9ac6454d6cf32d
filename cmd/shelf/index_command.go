package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelf/internal/ipc"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Digest index maintenance",
	}

	indexCmd.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the digest index from organized files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RebuildIndex()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Index rebuilt: %d files registered\n", resp.Indexed)
				return nil
			})
		},
	})

	return indexCmd
}
