// Package server exposes the dashboard payload as a JSON API for the
// presentation layer.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finsight-dev/finsight/internal/dashboard"
)

// Invalidator is the slice of the snapshot cache the refresh endpoint
// needs.
type Invalidator interface {
	Invalidate()
}

// Server serves the dashboard API.
type Server struct {
	svc   *dashboard.Service
	cache Invalidator
	log   *zap.Logger
}

// New creates a Server. cache may be nil when no snapshot cache is in
// front of the source.
func New(svc *dashboard.Service, cache Invalidator, log *zap.Logger) *Server {
	return &Server{svc: svc, cache: cache, log: log}
}

// Handler returns the routed handler with CORS, request-ID and logging
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/projection", s.handleProjection)
	mux.HandleFunc("GET /api/aging", s.handleAging)
	mux.HandleFunc("GET /api/reconciliation", s.handleReconciliation)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	return s.withCORS(s.withLogging(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.refresh(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.refresh(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, payload.Projection)
}

func (s *Server) handleAging(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.refresh(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"receivables": payload.ReceivableAging,
		"payables":    payload.PayableAging,
	})
}

func (s *Server) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.refresh(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result":     payload.Reconciliation,
		"match_rate": payload.Reconciliation.MatchRate(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.refresh(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"monthly": payload.Monthly,
		"history": payload.History,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		s.cache.Invalidate()
	}
	payload, ok := s.refresh(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// refresh runs one dashboard refresh and writes the error response on
// failure. Upstream failures surface as 502: fatal for this refresh,
// retried by the client, never here.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) (*dashboard.Payload, bool) {
	payload, err := s.svc.Refresh(r.Context())
	if err != nil {
		s.log.Error("refresh failed",
			zap.String("request_id", requestID(r)),
			zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return nil, false
	}
	return payload, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const requestIDHeader = "X-Request-Id"

func requestID(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// withLogging assigns each request an ID and logs it on completion.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)

		started := time.Now()
		next.ServeHTTP(w, r)

		s.log.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(started)))
	})
}

// withCORS lets the dashboard frontend call the API from another
// origin.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
