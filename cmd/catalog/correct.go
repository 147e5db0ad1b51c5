package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/catalog-review/internal/domain/services"
	"github.com/ersonp/catalog-review/internal/infrastructure/parsers"
)

func newCorrectCmd() *cobra.Command {
	var (
		sets   []string
		reason string
	)

	cmd := &cobra.Command{
		Use:   "correct <slug>",
		Short: "Propose corrections to fields of an existing record",
		Long: `Files one correction per --set flag. Values are strings unless they are
true/false or a JSON string array, e.g. --set 'platforms=["PC","Switch"]'.
An empty value proposes clearing the field.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			if len(changes) == 0 {
				return errors.New("at least one --set field=value is required")
			}

			return withDeps(func(d *Deps) error {
				created, err := d.Proposals.HandleCorrect(cmd.Context(), globalActor, services.CorrectionInput{
					RecordSlug: args[0],
					Changes:    changes,
					Reason:     reason,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if globalJSON {
					return printJSON(out, created)
				}
				fmt.Fprintf(out, "Filed %d correction(s):\n\n", len(created))
				for i := range created {
					displayCorrection(out, &created[i])
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Field change as field=value (repeatable)")
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Why the change is needed")

	return cmd
}

// parseAssignments parses field=value pairs in order.
func parseAssignments(pairs []string) ([]services.FieldChange, error) {
	changes := make([]services.FieldChange, 0, len(pairs))
	for _, pair := range pairs {
		field, raw, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected field=value)", pair)
		}
		value, err := parsers.ParseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", field, err)
		}
		changes = append(changes, services.FieldChange{Field: field, Value: value})
	}
	return changes, nil
}
