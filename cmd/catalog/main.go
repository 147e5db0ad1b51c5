// Package main provides the entry point for the catalog review CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version     = "0.1.0-dev"
	globalActor string
	globalJSON  bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := newRootCmd()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Community corrections and submissions for a shared catalog, with reviewer approval",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalActor, "actor", "a", os.Getenv(EnvActor), "User id acting on the catalog (env "+EnvActor+")")
	rootCmd.PersistentFlags().BoolVar(&globalJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		newInitCmd(),
		newUsersCmd(),
		newRecordsCmd(),
		newCorrectCmd(),
		newSubmitCmd(),
		newProposalsCmd(),
		newReviewCmd(),
		newAuditCmd(),
		newServeCmd(),
	)

	return rootCmd
}
