package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyperengineering/portfolio/internal/api"
	"github.com/hyperengineering/portfolio/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mock backend over HTTP",
	Long:  "Run the mock backend behind the RPC endpoint (POST / and POST /exec) with /health and /metrics, so clients can exercise the HTTP path without the real backend.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"Listen port (overrides config and PORTFOLIO_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Signal handling comes from main via the command context
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	logger := slog.Default()

	// 2. Initialize mock backend (user table migrations, generator)
	backend, users, err := newMockBackend(cfg, logger)
	if err != nil {
		return err
	}
	slog.Info("mock backend initialized",
		"ideas", backend.Count(),
		"model", backend.ModelName(),
		"db_path", config.ExpandHome(cfg.Mock.DBPath))

	// 3. Initialize HTTP router
	handler := api.NewHandler(backend, Version, cfg.Server.MetricsToken)
	router := api.NewRouter(handler)

	// 4. Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 5. Run the listener and the shutdown watcher as one group
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "address", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	fmt.Fprintf(cmd.OutOrStdout(), "Serving mock backend on %s\n", addr)

	// 6. Block until signal received or the listener fails, then drain
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown initiated")

		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout))
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()

	// 7. Close user table once no request can reach it
	if cerr := users.Close(); cerr != nil {
		slog.Error("user table close error", "error", cerr)
	}
	if err != nil {
		slog.Error("server error", "error", err)
		return err
	}
	slog.Info("shutdown complete")
	return nil
}
