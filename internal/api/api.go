// Package api provides the HTTP server exposing session metrics in
// schedule mode: a JSON summary of the last session and the Prometheus
// scrape endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/deckhand-tools/deckhand/pkg/metrics"
)

// shutdownTimeout bounds graceful server shutdown.
const shutdownTimeout = 5 * time.Second

// Server exposes the metrics endpoints on one listener.
type Server struct {
	addr     string
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// NewServer creates a metrics API server listening on addr.
func NewServer(addr string, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	return &Server{addr: addr, metrics: m, gatherer: gatherer}
}

// Start serves until the context is cancelled, then shuts down
// gracefully. It blocks; callers run it in its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/metrics", s.handleSummary)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Debug("Metrics API shutdown failed")
		}
	}()

	logrus.WithField("addr", s.addr).Info("Metrics API enabled")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// handleSummary writes the last session's counters as JSON.
func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	last := s.metrics.Last()

	w.Header().Set("Content-Type", "application/json")

	data := map[string]any{
		"scanned": last.Scanned,
		"stale":   last.Stale,
		"updated": last.Updated,
		"failed":  last.Failed,
		"unknown": last.Unknown,
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Debug("Failed to encode metrics summary")
	}
}
