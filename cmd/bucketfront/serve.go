package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagarc03/bucketfront/config"
	bfhttp "github.com/sagarc03/bucketfront/http"
	"github.com/sagarc03/bucketfront/metrics"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the bucketfront gateway and, when enabled, the metrics listener.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3000, "HTTP server port (env: BUCKETFRONT_SERVER_PORT)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := newGateway(ctx, cfg)
	if err != nil {
		return err
	}

	handlerConfig := bfhttp.HandlerConfig{
		RootRedirect: cfg.Server.RootRedirect,
		CORS:         cfg.CORS,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		m := metrics.New()
		m.RegisterCache("signed_urls", gw.urls.Stats)
		m.RegisterCache("probes", gw.lookups.ProbeStats)
		m.RegisterCache("results", gw.lookups.ResultStats)
		handlerConfig.Middlewares = append(handlerConfig.Middlewares, m.Middleware)

		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           m.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	handler := bfhttp.NewHandler(&handlerConfig, gw.proxy)

	// No WriteTimeout: large objects stream for as long as the client reads.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		gw.lookups.Run(gctx)
		return nil
	})
	g.Go(func() error {
		gw.urls.Run(gctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("starting server",
			"addr", server.Addr,
			"bucket", cfg.Storage.Bucket,
			"prefix", cfg.Storage.Prefix,
			"fallback", cfg.Fallback.Policy,
		)
		return listen(gctx, server)
	})
	if metricsServer != nil {
		g.Go(func() error {
			slog.Info("starting metrics server", "addr", metricsServer.Addr)
			return listen(gctx, metricsServer)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("server stopped")
	return nil
}

// listen serves until ctx is cancelled, then shuts the server down gracefully.
func listen(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server", "addr", server.Addr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s: %w", server.Addr, err)
	}
	return nil
}
