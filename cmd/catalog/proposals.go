package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProposalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proposals",
		Aliases: []string{"queue"},
		Short:   "List and inspect corrections and submissions",
	}
	cmd.AddCommand(newProposalsListCmd(), newProposalsShowCmd())
	return cmd
}

func newProposalsListCmd() *cobra.Command {
	var (
		kind   string
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List proposals of one kind, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				result, err := d.Proposals.HandleList(cmd.Context(), kind, status, limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if globalJSON {
					return printJSON(out, result)
				}
				if result.Count() == 0 {
					fmt.Fprintf(out, "No %ss found.\n", result.Kind)
					return nil
				}
				fmt.Fprintf(out, "Showing %d %s(s):\n\n", result.Count(), result.Kind)
				for i := range result.Corrections {
					displayCorrection(out, &result.Corrections[i])
				}
				for i := range result.Submissions {
					displaySubmission(out, &result.Submissions[i])
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "correction", "Proposal kind (correction, submission)")
	cmd.Flags().StringVarP(&status, "status", "s", "pending", "Status filter (pending, approved, rejected, modified, superseded, or empty for all)")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of proposals to display")

	return cmd
}

func newProposalsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Show one proposal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				result, err := d.Proposals.HandleGet(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if globalJSON {
					return printJSON(out, result)
				}
				if result.Correction != nil {
					displayCorrection(out, result.Correction)
				}
				if result.Submission != nil {
					displaySubmission(out, result.Submission)
				}
				return nil
			})
		},
	}
}
