package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hyperengineering/portfolio/internal/api"
	"github.com/hyperengineering/portfolio/internal/auth"
	"github.com/hyperengineering/portfolio/internal/mock"
	"github.com/hyperengineering/portfolio/internal/portfolio"
	"github.com/hyperengineering/portfolio/internal/rpc"
	"github.com/hyperengineering/portfolio/internal/store"
	"github.com/hyperengineering/portfolio/internal/types"
)

// devServer is the mock backend served over HTTP in-process.
type devServer struct {
	backend *mock.Backend
	server  *httptest.Server
}

// startDevServer serves a seeded mock backend with a SQLite user table and
// session validation switched on.
func startDevServer(t *testing.T) *devServer {
	t.Helper()

	users, err := store.NewSQLiteStore(t.TempDir() + "/users.db")
	if err != nil {
		t.Fatalf("open user table: %v", err)
	}
	t.Cleanup(func() { users.Close() })

	backend := mock.New(
		mock.WithIdeas(mock.SampleIdeas()),
		mock.WithLatency(0, 0),
		mock.WithUsers(users),
		mock.WithSecret([]byte("e2e-secret")),
		mock.RequireSession(true),
	)
	handler := api.NewHandler(backend, "e2e", "")
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)

	return &devServer{backend: backend, server: srv}
}

// client is one user's client-side stack: store -> gate -> HTTP client.
type client struct {
	gate     *auth.Gate
	store    *portfolio.Store
	sessions *auth.MemorySessionStore

	mu            sync.Mutex
	notifications []portfolio.Notification
}

func newClient(t *testing.T, srv *devServer) *client {
	t.Helper()
	return newClientWithSessions(t, srv, &auth.MemorySessionStore{})
}

func newClientWithSessions(t *testing.T, srv *devServer, sessions *auth.MemorySessionStore) *client {
	t.Helper()

	c := &client{sessions: sessions}
	rc := rpc.NewClient(srv.server.URL, rpc.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	c.gate = auth.NewGate(rc, sessions, nil)
	c.store = portfolio.New(c.gate,
		portfolio.WithNotificationTTL(time.Minute),
		portfolio.WithListener(func(n portfolio.Notification) {
			c.mu.Lock()
			c.notifications = append(c.notifications, n)
			c.mu.Unlock()
		}),
	)
	t.Cleanup(c.store.Close)
	return c
}

func (c *client) lastNotification() portfolio.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.notifications) == 0 {
		return portfolio.Notification{}
	}
	return c.notifications[len(c.notifications)-1]
}

func (c *client) register(t *testing.T, name, email string) {
	t.Helper()
	if _, err := c.gate.Register(context.Background(), name, email, "s3cret"); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
}

func (c *client) load(t *testing.T) []types.Idea {
	t.Helper()
	if err := c.store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c.store.Ideas()
}

// postRaw sends body to path and decodes the envelope.
func postRaw(t *testing.T, srv *devServer, path string, body []byte) (int, rpc.Response) {
	t.Helper()
	resp, err := http.Post(srv.server.URL+path, "text/plain;charset=utf-8", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env rpc.Response
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}
