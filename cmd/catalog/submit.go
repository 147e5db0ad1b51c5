package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/services"
)

type submitFlags struct {
	file  string
	slug  string
	title string
	sets  []string
	notes string
}

func newSubmitCmd() *cobra.Command {
	var flags submitFlags

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Propose a full record, new or existing",
		Long: `Files a submission either from a JSON/YAML document (--file) or from
--title and --set flags. The record slug defaults to the slugified title.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Submission document (.json, .yaml)")
	cmd.Flags().StringVar(&flags.slug, "slug", "", "Record slug (defaults to the slugified title)")
	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "Record title")
	cmd.Flags().StringArrayVarP(&flags.sets, "set", "s", nil, "Field value as field=value (repeatable)")
	cmd.Flags().StringVarP(&flags.notes, "notes", "n", "", "Notes for reviewers")

	return cmd
}

func runSubmit(cmd *cobra.Command, flags submitFlags) error {
	if flags.file != "" && len(flags.sets) > 0 {
		return errors.New("use either --file or --set, not both")
	}

	var in services.SubmissionInput
	if flags.file == "" {
		changes, err := parseAssignments(flags.sets)
		if err != nil {
			return err
		}
		in = services.SubmissionInput{
			RecordSlug: flags.slug,
			Title:      flags.title,
			Data:       make(map[string]any, len(changes)),
			Notes:      flags.notes,
		}
		for _, ch := range changes {
			in.Data[ch.Field] = ch.Value
		}
	}

	return withDeps(func(d *Deps) error {
		var (
			sub *entities.Submission
			err error
		)
		if flags.file != "" {
			sub, err = d.Proposals.HandleSubmitFile(cmd.Context(), globalActor, flags.file, flags.slug)
		} else {
			sub, err = d.Proposals.HandleSubmit(cmd.Context(), globalActor, in)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if globalJSON {
			return printJSON(out, sub)
		}
		fmt.Fprintln(out, "Filed submission:")
		fmt.Fprintln(out)
		displaySubmission(out, sub)
		return nil
	})
}
