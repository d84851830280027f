package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtree/internal/api"
	"github.com/matzehuels/orgtree/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxBody int64
		timeout time.Duration
		noCache bool
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints take the outline text as the request body:

  POST /v1/parse    weighted tree as JSON
  POST /v1/layout   positioned tree as JSON
  POST /v1/render   one artifact (?format=html|svg|png|pdf|dot|json)
  GET  /healthz     liveness
  GET  /metrics     Prometheus metrics

Options such as width, height, strategy and marker are query parameters.
Defaults come from the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if addr == "" {
				addr = cfg.Addr
			}
			if maxBody == 0 {
				maxBody = cfg.MaxBodyBytes
			}
			if timeout == 0 {
				timeout = cfg.TimeoutDuration()
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := api.Options{
				Runner:       runner,
				Logger:       c.Logger,
				Defaults:     c.Config.PipelineOptions(),
				MaxBodyBytes: maxBody,
				Timeout:      timeout,
			}
			if metrics {
				m := observability.NewMetrics()
				observability.SetPipelineHooks(m)
				observability.SetCacheHooks(m)
				defer observability.Reset()
				opts.Metrics = m
			}

			printInfo("Serving on %s", StyleValue.Render(addr))
			printKeyValue("cache", cacheLabel(c, noCache))
			printKeyValue("body limit", fmt.Sprintf("%d bytes", maxBody))
			printKeyValue("timeout", timeout.String())

			err = api.New(opts).ListenAndServe(ctx, addr)
			if err == nil && ctx.Err() != nil {
				printSuccess("Server stopped")
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().Int64Var(&maxBody, "max-body", 0, "maximum request body in bytes (default 4 MiB)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout (default 30s)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")

	return cmd
}

// cacheLabel describes the cache backend a runner will use.
func cacheLabel(c *CLI, noCache bool) string {
	cfg := c.Config.Cache
	switch {
	case noCache || cfg.Disabled:
		return "disabled"
	case cfg.RedisURL != "":
		return "redis"
	}
	dir, err := c.cacheDir()
	if err != nil {
		return "disabled"
	}
	return dir
}
