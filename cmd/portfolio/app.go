package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyperengineering/portfolio/internal/auth"
	"github.com/hyperengineering/portfolio/internal/config"
	"github.com/hyperengineering/portfolio/internal/insight"
	"github.com/hyperengineering/portfolio/internal/mock"
	"github.com/hyperengineering/portfolio/internal/portfolio"
	"github.com/hyperengineering/portfolio/internal/rpc"
	"github.com/hyperengineering/portfolio/internal/store"
)

// app bundles the client-side stack a command works against:
// store -> gate -> client -> (endpoint | mock backend).
type app struct {
	client *rpc.Client
	gate   *auth.Gate
	store  *portfolio.Store

	// backend is nil when a real endpoint is configured.
	backend *mock.Backend
	closers []io.Closer
}

// newApp wires the stack from cfg. Notifications are written to errOut.
func newApp(cfg *config.Config, errOut io.Writer) (*app, error) {
	logger := slog.Default()
	a := &app{}

	opts := []rpc.Option{
		rpc.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Backend.Timeout)}),
		rpc.WithLogger(logger),
	}
	if !rpc.IsConfigured(cfg.Backend.URL) {
		backend, users, err := newMockBackend(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.backend = backend
		a.closers = append(a.closers, users)
		opts = append(opts, rpc.WithFallback(backend))
		logger.Debug("using mock backend", "ideas", backend.Count(), "model", backend.ModelName())
	}
	a.client = rpc.NewClient(cfg.Backend.URL, opts...)

	a.gate = auth.NewGate(a.client, auth.NewFileSessionStore(config.ExpandHome(cfg.Session.Path)), logger)
	a.store = portfolio.New(a.gate,
		portfolio.WithNotificationTTL(time.Duration(cfg.Store.NotificationTTL)),
		portfolio.WithLocation(cfg.Location()),
		portfolio.WithLogger(logger),
		portfolio.WithListener(func(n portfolio.Notification) {
			fmt.Fprintf(errOut, "[%s] %s\n", n.Severity, n.Message)
		}),
	)
	return a, nil
}

// Close stops the store's timers and releases the mock user table.
func (a *app) Close() {
	a.store.Close()
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			slog.Warn("close error", "error", err)
		}
	}
}

// load fetches the idea list; commands that read or change existing ideas
// start here.
func (a *app) load(ctx context.Context) error {
	if err := a.store.Load(ctx); err != nil {
		return fmt.Errorf("load ideas: %w", err)
	}
	return nil
}

// newMockBackend builds the in-process backend from the mock section of
// cfg. The returned closer releases its SQLite user table.
func newMockBackend(cfg *config.Config, logger *slog.Logger) (*mock.Backend, io.Closer, error) {
	users, err := store.NewSQLiteStore(config.ExpandHome(cfg.Mock.DBPath))
	if err != nil {
		return nil, nil, fmt.Errorf("open mock user table: %w", err)
	}

	opts := []mock.Option{
		mock.WithUsers(users),
		mock.WithGenerator(newGenerator(cfg)),
		mock.WithLatency(time.Duration(cfg.Mock.LatencyMin), time.Duration(cfg.Mock.LatencyMax)),
		mock.WithTokenTTL(time.Duration(cfg.Mock.TokenTTL)),
		mock.RequireSession(cfg.Mock.RequireSession),
		mock.WithLogger(logger),
	}
	if cfg.Mock.JWTSecret != "" {
		opts = append(opts, mock.WithSecret([]byte(cfg.Mock.JWTSecret)))
	}
	if cfg.Mock.Seed {
		opts = append(opts, mock.WithIdeas(mock.SampleIdeas()))
	}
	return mock.New(opts...), users, nil
}

func newGenerator(cfg *config.Config) insight.Generator {
	if cfg.AI.APIKey == "" {
		return insight.NewPlaceholder()
	}
	return insight.NewOpenAI(cfg.AI.APIKey, cfg.AI.Model)
}
