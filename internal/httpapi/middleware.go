package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// authorize checks the configured shared secret against X-Api-Key or an
// Authorization: Bearer header, following the teacher's
// daemonServer.authorize pattern. An empty configured key means auth is
// disabled.
func (s *Server) authorize(r *http.Request) bool {
	key := strings.TrimSpace(s.cfg.ProxyAPIKey)
	if key == "" {
		return true
	}
	if headerKey := strings.TrimSpace(r.Header.Get("X-Api-Key")); headerKey == key {
		return true
	}
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):]) == key
	}
	return false
}

// requireAuth rejects unauthenticated requests with 401 before the
// wrapped handler runs.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorize(r) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated"})
			return
		}
		next(w, r)
	}
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// withLogging logs one structured line per request with method, path,
// status, and elapsedMs, following the pack's request-logging middleware
// shape. The reqId and outcome of a submission are logged separately by
// logOutcome.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(wrapped, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"elapsedMs", time.Since(start).Milliseconds(),
		)
	}
}

func logOutcome(logger *slog.Logger, reqID string, outcome string, elapsedMs int64) {
	logger.Info("dispatch outcome", "reqId", reqID, "outcome", outcome, "elapsedMs", elapsedMs)
}
