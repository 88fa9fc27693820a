package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/projgen/internal/generator"
	"github.com/vango-dev/projgen/internal/metrics"
	"github.com/vango-dev/projgen/internal/publish"
	"github.com/vango-dev/projgen/internal/server"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve project generation over HTTP",
		Long: `Start an HTTP server that generates projects on request.

Endpoints:
  POST /api/projects     {"name": "..."} generates a project
  GET  /api/templates    lists template sets
  GET  /api/projects/ws  websocket with progress events
  GET  /metrics          Prometheus metrics
  GET  /healthz          liveness probe

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default: :8080)")
	c.bind("serve.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func (c *cli) runServe(cmd *cobra.Command) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger := c.newLogger(cfg, false)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := generator.Options{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(metrics.WithRegistry(registry)),
	}
	if cfg.Publish.S3.Enabled() {
		pub, err := publish.FromConfig(cfg.Publish.S3)
		if err != nil {
			return err
		}
		opts.Publisher = pub
		logger.Info("publishing enabled", "bucket", pub.Bucket())
	}

	gen, err := generator.New(opts)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Generator: gen,
		Addr:      cfg.Serve.Addr,
		Logger:    logger,
		Gatherer:  registry,
	})
	c.success("Serving projects from %s on %s", cfg.ProjectsPath(), cfg.Serve.Addr)
	return srv.Start(cmd.Context())
}
