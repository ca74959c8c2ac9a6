package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ndorder/pkg/api"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// server is asked to stop.
const shutdownTimeout = 10 * time.Second

type serveOpts struct {
	addr    string
	maxNNZ  int
	maxDim  int
	timeout time.Duration
	noCache bool
}

// serveCommand creates the serve command, which runs the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP ordering service",
		Long: `Run the HTTP ordering service.

Endpoints:
  GET  /healthz       liveness check
  GET  /version       build information
  POST /v1/order      compute an ordering
  POST /v1/analyze    fill statistics of a permutation
  POST /v1/tree       separator tree as DOT or SVG (?format=dot|svg)

Defaults come from the [server] and [ordering] tables of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().IntVar(&opts.maxNNZ, "max-nnz", 0, "largest accepted pattern (default from config)")
	cmd.Flags().IntVar(&opts.maxDim, "max-dim", 0, "largest accepted row or column count (default from config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, opts *serveOpts) error {
	cfg := c.Config.Server
	if cmd.Flags().Changed("addr") {
		cfg.Addr = opts.addr
	}
	if cmd.Flags().Changed("max-nnz") {
		cfg.MaxNNZ = opts.maxNNZ
	}
	if cmd.Flags().Changed("max-dim") {
		cfg.MaxDim = opts.maxDim
	}
	if cmd.Flags().Changed("timeout") {
		cfg.RequestTimeout = opts.timeout
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := api.New(runner, c.Logger, api.Options{
		MaxNNZ:         cfg.MaxNNZ,
		MaxDim:         cfg.MaxDim,
		RequestTimeout: cfg.RequestTimeout,
		Defaults:       c.Config.Ordering,
	})

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	return c.serve(ctx, ln, srv.Handler())
}

// serve runs handler on ln until ctx is cancelled, then shuts down
// gracefully.
func (c *CLI) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	hs := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- hs.Serve(ln)
	}()
	c.Logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errc
	return nil
}
