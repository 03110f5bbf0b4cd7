// Package httpapi implements the HTTP boundary in front of the core
// scheduler: routing, request validation, shared-secret auth,
// vendor-compatible translation, and mapping core outcomes onto status
// codes.
package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kovacsdev/agentgate/internal/config"
	"github.com/kovacsdev/agentgate/internal/core"
)

// Server is the HTTP boundary wired to a core.Core and the resolved
// configuration.
type Server struct {
	cfg    config.Config
	core   core.Core
	logger *slog.Logger
}

// NewServer constructs a Server. cfg.ProxyAPIKey, when non-empty, gates
// every route except /healthz.
func NewServer(cfg config.Config, c core.Core, logger *slog.Logger) *Server {
	return &Server{cfg: cfg, core: c, logger: logger}
}

// Routes returns the ServeMux wired with every route in the table below:
//
//	POST /v1/generate  native Request/Response shape
//	POST /v1/messages  vendor-compatible shape, translated at the boundary
//	GET  /healthz      liveness; no auth required
//	GET  /stats        {active, queued, metrics}, authenticated
//	GET  /metrics      Prometheus text exposition, authenticated
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/generate", s.withLogging(s.requireAuth(s.handleGenerate)))
	mux.HandleFunc("/v1/messages", s.withLogging(s.requireAuth(s.handleMessages)))
	mux.HandleFunc("/healthz", s.withLogging(s.handleHealthz))
	mux.HandleFunc("/stats", s.withLogging(s.requireAuth(s.handleStats)))
	mux.HandleFunc("/metrics", s.withLogging(s.requireAuth(s.handleMetrics)))
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "agentgated"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}
	var payload generateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "prompt is required"})
		return
	}

	reqID := newReqID()
	start := time.Now()
	resp := <-s.core.Submit(r.Context(), payload.toCoreRequest())
	logOutcome(s.logger, reqID, string(resp.Kind), time.Since(start).Milliseconds())

	writeJSON(w, resp.Kind.HTTPStatus(), fromCoreResponse(resp))
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}
	var payload messagesRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if strings.TrimSpace(payload.lastUserPrompt()) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "messages must contain a user turn"})
		return
	}

	reqID := newReqID()
	start := time.Now()
	resp := <-s.core.Submit(r.Context(), payload.toCoreRequest())
	logOutcome(s.logger, reqID, string(resp.Kind), time.Since(start).Milliseconds())

	writeJSON(w, resp.Kind.HTTPStatus(), toMessagesResponse(reqID, payload.Model, resp))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Active:  s.core.Active(),
		Queued:  s.core.Queued(),
		Metrics: s.core.SnapshotMetrics(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = w.Write([]byte(renderPrometheus(s.core.SnapshotMetrics())))
}

// renderPrometheus mirrors the teacher's cmd/smartshd/metrics.go
// hand-rolled text-exposition renderer, adapted to the gateway's own
// counters. No Prometheus client library appears anywhere in the
// retrieved example pack (see DESIGN.md).
func renderPrometheus(snap core.MetricsSnapshot) string {
	lines := []string{
		"# TYPE agentgate_requests_total counter",
		fmt.Sprintf("agentgate_requests_total %d", snap.Total),
		"# TYPE agentgate_requests_completed_total counter",
		fmt.Sprintf("agentgate_requests_completed_total %d", snap.Completed),
		"# TYPE agentgate_requests_failed_total counter",
		fmt.Sprintf("agentgate_requests_failed_total %d", snap.Failed),
		"# TYPE agentgate_requests_timed_out_total counter",
		fmt.Sprintf("agentgate_requests_timed_out_total %d", snap.TimedOut),
		"# TYPE agentgate_requests_queue_rejected_total counter",
		fmt.Sprintf("agentgate_requests_queue_rejected_total %d", snap.QueueRejected),
		"# TYPE agentgate_active gauge",
		fmt.Sprintf("agentgate_active %d", snap.Active),
		"# TYPE agentgate_queued gauge",
		fmt.Sprintf("agentgate_queued %d", snap.Queued),
		"# TYPE agentgate_latency_ms gauge",
		fmt.Sprintf(`agentgate_latency_ms{quantile="p95"} %d`, snap.LatencyP95),
	}
	return strings.Join(lines, "\n") + "\n"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func newReqID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(buf)
}
