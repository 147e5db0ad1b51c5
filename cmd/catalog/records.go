package main

import (
	"github.com/spf13/cobra"
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect catalog records",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <slug>",
		Short: "Show a record with its update history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				rec, err := d.Records.HandleShow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(cmd.OutOrStdout(), rec)
				}
				displayRecord(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	})
	return cmd
}
