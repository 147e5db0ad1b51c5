package main

import (
	"github.com/spf13/cobra"

	"github.com/ersonp/catalog-review/internal/infrastructure/httpapi"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review API over HTTP",
		Long:  "Serves the JSON review API, /metrics and /healthz. The caller is identified by the " + httpapi.ActorHeader + " header.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if addr == "" {
					addr = d.Config.Server.Addr
				}
				srv := httpapi.NewServer(httpapi.Handlers{
					Proposals: d.Proposals,
					Reviews:   d.Reviews,
					Records:   d.Records,
					Audit:     d.Audit,
				}, d.Metrics.Handler(), d.Logger)
				return srv.ListenAndServe(cmd.Context(), addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr from config)")

	return cmd
}
