package cmd

import (
	"github.com/huangsam/transcomplex/core"
	"github.com/huangsam/transcomplex/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP scoring service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring engine over HTTP",
	Long: `Start an HTTP JSON service backed by the same engine, cache and run history as the CLI.

Routes:
  POST /v1/score                 {"text": "...", "source": "..."}
  POST /v1/batch                 {"texts": ["..."], "sort": false, "limit": 0}
  GET  /v1/metrics/definitions   sub-metric definitions, weights and tiers
  GET  /healthz                  liveness probe
  GET  /metrics                  Prometheus metrics

Examples:
  # Listen on the default address
  transcomplex serve

  # Listen on all interfaces with a shared cache
  TRANSCOMPLEX_CACHE_BACKEND=redis TRANSCOMPLEX_CACHE_DB_CONNECT=redis://cache:6379/0 \
    transcomplex serve --listen 0.0.0.0:8080`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		eng, err := core.NewEngine(cfg, cacheManager)
		if err != nil {
			return err
		}
		return server.New(cfg, eng).ListenAndServe(rootCtx, cfg.Listen)
	},
}
