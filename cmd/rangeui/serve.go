package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/rangeui/internal/demo"
	"github.com/vango-dev/rangeui/pkg/metrics"
	"github.com/vango-dev/rangeui/pkg/preview"
	"github.com/vango-dev/rangeui/pkg/vdom"
)

func serveCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live preview of the demo application",
		Long: `Start the preview server.

The server renders the demo application, forwards browser events to the
in-memory document and streams the resulting mutations to every
connected page over a WebSocket.

Examples:
  rangeui serve
  rangeui serve --port 8080
  RANGEUI_PREVIEW_PORT=8080 rangeui serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx, cmd)
		},
	}

	cmd.Flags().IntP("port", "p", 0, "server port (default from config)")
	cmd.Flags().String("host", "", "server host (default from config)")
	_ = c.v.BindPFlag("preview.port", cmd.Flags().Lookup("port"))
	_ = c.v.BindPFlag("preview.host", cmd.Flags().Lookup("host"))

	return cmd
}

func (c *cli) serve(ctx context.Context, cmd *cobra.Command) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observer := metrics.New(metrics.WithRegistry(registry))

	doc, rt := c.newDocument(vdom.WithObserver(observer))
	srv := preview.New(doc, rt,
		preview.WithLogger(c.logger),
		preview.WithMetrics(registry, c.cfg.Preview.MetricsPath),
	)
	defer srv.Close()

	if err := srv.Mount(ctx, demo.App()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	success(out, "Preview ready")
	info(out, "Local:   %s", c.cfg.PreviewURL())
	info(out, "Metrics: %s%s", c.cfg.PreviewURL(), c.cfg.Preview.MetricsPath)

	return srv.ListenAndServe(ctx, c.cfg.PreviewAddress())
}
