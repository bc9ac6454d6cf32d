package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelf/internal/ipc"
)

func newRulesCommand(ctx *commandContext) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
	}

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "reload",
		Short: "Re-read rules from the daemon's configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ReloadRules()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rules reloaded: %d user rules active\n", resp.Rules)
				return nil
			})
		},
	})

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the configured classification rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if len(cfg.Rules) == 0 {
				fmt.Fprintln(stdout, "No user rules configured; builtin extension table applies")
				return nil
			}
			rows := make([][]string, 0, len(cfg.Rules))
			for i, rule := range cfg.Rules {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), rule.Pattern, rule.Category})
			}
			fmt.Fprint(stdout, renderTable(
				[]string{"#", "Pattern", "Category"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintln(stdout)
			return nil
		},
	})

	return rulesCmd
}
