package main

import (
	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	var (
		record string
		limit  int
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show or export the audit ledger",
		Long:  "Shows every merged field change for one record (oldest first), or the most recent changes across the catalog. Use --format and --output to export.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if globalJSON {
				format = "json"
			}
			exporter, err := newLedgerExporter(format, output)
			if err != nil {
				return err
			}

			return withDeps(func(d *Deps) error {
				result, err := d.Audit.Handle(cmd.Context(), record, limit)
				if err != nil {
					return err
				}
				return exporter.export(cmd.OutOrStdout(), result.Entries)
			})
		},
	}

	cmd.Flags().StringVarP(&record, "record", "r", "", "Record slug")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultAuditLimit, "Maximum entries for the global view")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, csv, markdown)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
