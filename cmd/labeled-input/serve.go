package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/labeled-input/internal/config"
	"github.com/vango-dev/labeled-input/internal/preview"
	"github.com/vango-dev/labeled-input/pkg/metrics"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		host    string
		port    int
		attrs   []string
		noStats bool
		trace   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live preview server",
		Long: `Serve a page with the element and drive it live over a WebSocket.
Every browser tab gets its own element and scheduler.

Examples:
  labeled-input serve
  labeled-input serve --port=8080 --attr type=number`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host != "" {
				c.cfg.Preview.Host = host
			}
			if port != 0 {
				c.cfg.Preview.Port = port
			}
			def, err := c.definition()
			if err != nil {
				return err
			}
			initial, err := parseAttrs(c.cfg.Attributes, attrs)
			if err != nil {
				return err
			}

			opts := preview.Options{
				Definition: def,
				Attributes: initial,
				Logger:     c.logger,
				Trace:      trace,
			}
			if !noStats {
				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				opts.Collector = metrics.NewCollector(metrics.WithRegistry(reg))
				opts.Gatherer = reg
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.success("Preview at %s", c.cfg.PreviewURL())
			if !noStats {
				c.info("metrics at %s/metrics", c.cfg.PreviewURL())
			}
			return preview.New(opts).ListenAndServe(ctx, c.cfg.PreviewAddress())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to bind (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default "+strconv.Itoa(config.DefaultPort)+")")
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "Initial attribute as name=value (repeatable)")
	cmd.Flags().BoolVar(&noStats, "no-metrics", false, "Disable the /metrics endpoint")
	cmd.Flags().BoolVar(&trace, "trace", false, "Record a span per flush with the global tracer provider")

	return cmd
}
