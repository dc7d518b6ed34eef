package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyperengineering/portfolio/internal/metrics"
	"github.com/hyperengineering/portfolio/internal/rpc"
	"github.com/hyperengineering/portfolio/internal/types"
)

// maxRequestBody bounds an RPC request. Ranking and insight payloads carry
// the idea list, so this is generous.
const maxRequestBody = 10 << 20

// Backend is the service exposed on the RPC endpoint.
type Backend interface {
	rpc.Service
	Count() int
	ModelName() string
}

// Handler implements the API handlers
type Handler struct {
	backend      Backend
	version      string
	metricsToken string
}

// NewHandler creates a new Handler serving backend. A non-empty
// metricsToken protects GET /metrics with a bearer token.
func NewHandler(backend Backend, version, metricsToken string) *Handler {
	return &Handler{
		backend:      backend,
		version:      version,
		metricsToken: metricsToken,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Backend:   "mock",
		IdeaCount: h.backend.Count(),
		AIModel:   h.backend.ModelName(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Exec handles POST / and POST /exec. The body is a {action, payload}
// envelope sent as text/plain. Application failures are reported inside a
// 200 response, as the remote script endpoint does; only an unreadable
// request gets a problem response.
func (h *Handler) Exec(w http.ResponseWriter, r *http.Request) {
	var req rpc.Request
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteProblem(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if req.Action == "" {
		WriteProblem(w, r, http.StatusBadRequest, "Missing action")
		return
	}

	start := time.Now()
	resp := rpc.Dispatch(r.Context(), h.backend, req)
	metrics.ObserveRPC(actionLabel(req.Action), resp.Success, time.Since(start))
	metrics.MockIdeas.Set(float64(h.backend.Count()))

	if !resp.Success {
		slog.Info("action failed", "action", req.Action, "error", resp.Error)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode rpc response", "action", req.Action, "error", err)
	}
}

// actionLabel bounds the metrics label to the known action set.
func actionLabel(name string) string {
	if a, err := rpc.ParseAction(name); err == nil {
		return a.String()
	}
	return "unknown"
}
