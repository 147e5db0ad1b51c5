package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ersonp/catalog-review/internal/application/handlers"
	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/infrastructure/parsers"
)

type reviewFlags struct {
	decision string
	notes    string
	value    string
}

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Approve, reject or modify pending proposals",
	}
	cmd.AddCommand(
		newReviewOneCmd(entities.KindCorrection),
		newReviewOneCmd(entities.KindSubmission),
		newReviewBatchCmd(),
	)
	return cmd
}

func newReviewOneCmd(kind entities.ProposalKind) *cobra.Command {
	var flags reviewFlags

	cmd := &cobra.Command{
		Use:   string(kind) + " <id>",
		Short: "Review one " + string(kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildReviewRequest(args[0], flags, cmd.Flags().Changed("value"))
			if err != nil {
				return err
			}
			return withDeps(func(d *Deps) error {
				outcome, err := d.Reviews.HandleReview(cmd.Context(), globalActor, string(kind), req)
				if outcome != nil {
					displayOutcome(cmd, outcome)
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&flags.decision, "decision", "d", "", "Decision (approved, rejected, modified)")
	cmd.Flags().StringVarP(&flags.notes, "notes", "n", "", "Review notes")
	if kind == entities.KindCorrection {
		cmd.Flags().StringVar(&flags.value, "value", "", "Final value for a modified decision")
	}
	_ = cmd.MarkFlagRequired("decision")

	return cmd
}

// buildReviewRequest turns review flags into a request. The final value is
// only set when --value was given.
func buildReviewRequest(id string, flags reviewFlags, hasValue bool) (entities.ReviewRequest, error) {
	req := entities.ReviewRequest{
		ProposalID: id,
		Decision:   entities.Decision(flags.decision),
		Notes:      flags.notes,
	}
	if !hasValue {
		return req, nil
	}
	value, err := parsers.ParseValue(flags.value)
	if err != nil {
		return req, fmt.Errorf("invalid --value: %w", err)
	}
	req.FinalValue = value
	return req, nil
}

func displayOutcome(cmd *cobra.Command, outcome *entities.ReviewOutcome) {
	out := cmd.OutOrStdout()
	if globalJSON {
		_ = printJSON(out, outcome)
		return
	}
	if outcome.Correction != nil {
		displayCorrection(out, outcome.Correction)
	}
	if outcome.Submission != nil {
		displaySubmission(out, outcome.Submission)
	}
	if len(outcome.Superseded) > 0 {
		fmt.Fprintf(out, "Superseded %d sibling submission(s):\n", len(outcome.Superseded))
		for _, s := range outcome.Superseded {
			fmt.Fprintf(out, "  %s by %s\n", s.ID, s.Submitter.Name)
		}
	}
}

func newReviewBatchCmd() *cobra.Command {
	var (
		kind   string
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Review many proposals from a decision file",
		Long: `Applies every decision in a JSON, YAML or CSV file. Items that are invalid,
missing, already reviewed or not reviewable by you are skipped and reported.
CSV columns: proposal_id, decision, notes, final_value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			if !slices.Contains(validFormats, format) {
				return fmt.Errorf("invalid --format %q (valid: %v)", format, validFormats)
			}
			return withDeps(func(d *Deps) error {
				result, err := d.Reviews.HandleBatchFile(cmd.Context(), globalActor, kind, file, handlers.BatchFileOptions{Format: format})
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(cmd.OutOrStdout(), result)
				}
				displayBatch(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "correction", "Proposal kind (correction, submission)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Decision file (.json, .yaml, .csv)")
	cmd.Flags().StringVar(&format, "format", "auto", "File format (auto, json, yaml, csv)")

	return cmd
}
