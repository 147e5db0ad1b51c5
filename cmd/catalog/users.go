package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users, roles and account status",
	}
	cmd.AddCommand(newUsersAddCmd(), newUsersSetCmd(), newUsersShowCmd())
	return cmd
}

func newUsersAddCmd() *cobra.Command {
	var name, role string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a user or update an existing user's name and role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				u, err := d.Users.HandleAdd(cmd.Context(), args[0], name, role)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(cmd.OutOrStdout(), u)
				}
				displayUser(cmd.OutOrStdout(), u)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (defaults to the id)")
	cmd.Flags().StringVarP(&role, "role", "r", "user", "Role (user, reviewer, admin)")

	return cmd
}

func newUsersSetCmd() *cobra.Command {
	var role, status string

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change a user's role or account status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if role == "" && status == "" {
				return errors.New("nothing to change (use --role or --status)")
			}
			return withDeps(func(d *Deps) error {
				u, err := d.Users.HandleSet(cmd.Context(), args[0], role, status)
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(cmd.OutOrStdout(), u)
				}
				displayUser(cmd.OutOrStdout(), u)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", "", "New role (user, reviewer, admin)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New account status (active, suspended, blocked, restricted)")

	return cmd
}

func newUsersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a user with contribution counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				u, err := d.Users.HandleShow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if globalJSON {
					return printJSON(cmd.OutOrStdout(), u)
				}
				displayUser(cmd.OutOrStdout(), u)
				return nil
			})
		},
	}
}
