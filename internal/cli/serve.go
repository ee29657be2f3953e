package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/heatposter/pkg/api"
	"github.com/matzehuels/heatposter/pkg/config"
)

// shutdownTimeout bounds how long in-flight requests may drain on exit.
const shutdownTimeout = 10 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	cache     cacheFlags
	addr      string
	dataDir   string
	rateLimit float64
	timeout   time.Duration
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var o serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve posters and statistics over HTTP.

Endpoints:
  GET  /healthz                   liveness probe
  POST /v1/stats                  statistics of a posted series
  POST /v1/poster?format=svg      poster of a posted series
  GET  /v1/files/{name}/poster    poster of a series file under --data-dir

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyServeFlags(cmd, cfg, &o)
			return c.runServe(withLogger(cmd.Context(), c.Logger), cfg, o.timeout)
		},
	}

	fs := cmd.Flags()
	o.cache.register(fs)
	fs.StringVar(&o.addr, "addr", "", "listen address (default \""+config.DefaultAddr+"\")")
	fs.StringVar(&o.dataDir, "data-dir", "", "directory of series files served by name")
	fs.Float64Var(&o.rateLimit, "rate-limit", 0, "requests per second, 0 = unlimited")
	fs.DurationVar(&o.timeout, "timeout", time.Minute, "per-request time limit")

	return cmd
}

// applyServeFlags layers the flags that were set on top of cfg.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config, o *serveOpts) {
	o.cache.apply(&cfg.Cache)
	fs := cmd.Flags()
	if fs.Changed("addr") {
		cfg.Server.Addr = o.addr
	}
	if fs.Changed("data-dir") {
		cfg.Server.DataDir = o.dataDir
	}
	if fs.Changed("rate-limit") {
		cfg.Server.RateLimit = o.rateLimit
	}
}

// runServe listens until ctx is cancelled, then drains open requests.
func (c *CLI) runServe(ctx context.Context, cfg *config.Config, timeout time.Duration) error {
	runner, err := c.newRunner(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := []api.Option{
		api.WithRateLimit(cfg.Server.RateLimit),
		api.WithTimeout(timeout),
	}
	if cfg.Server.DataDir != "" {
		opts = append(opts, api.WithDataDir(cfg.Server.DataDir))
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(runner, c.Logger, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Logger.Info("listening", "addr", srv.Addr, "data_dir", cfg.Server.DataDir, "rate_limit", cfg.Server.RateLimit)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
