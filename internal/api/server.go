// Package api exposes the meter engine over JSON. All policy that belongs to
// a transport layer (timeouts, cancellation, auth) lives here or above; the
// engine underneath is pure.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/astrometer/internal/calibration"
	"github.com/lox/astrometer/internal/ephemeris"
	"github.com/lox/astrometer/internal/meters"
	"github.com/lox/astrometer/internal/metrics"
)

type Server struct {
	engine         *meters.Engine
	charts         *ephemeris.Client
	port           string
	calibrationSet *calibration.Set
}

// NewServer wires the engine and an optional chart-service client. charts may
// be nil; requests must then carry both charts inline.
func NewServer(engine *meters.Engine, charts *ephemeris.Client, set *calibration.Set, port string) *Server {
	return &Server{engine: engine, charts: charts, port: port, calibrationSet: set}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/meters", s.instrument("meters", s.handleMeters))
	mux.HandleFunc("/api/featured", s.instrument("featured", s.handleFeatured))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// instrument wraps a handler with request counting and latency observation.
func (s *Server) instrument(endpoint string, h func(http.ResponseWriter, *http.Request) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := h(w, r)
		metrics.RequestsTotal.WithLabelValues(endpoint, httpStatusClass(status)).Inc()
		metrics.RequestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

func httpStatusClass(status int) string {
	switch {
	case status < 400:
		return "ok"
	case status < 500:
		return "client_error"
	default:
		return "server_error"
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "ok",
		"registry_version":    s.engine.Registry().Version,
		"calibration_version": s.calibrationSet.Version,
		"calibrated_meters":   s.calibrationSet.Meters(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
	return status
}

func writeError(w http.ResponseWriter, status int, msg string) int {
	return writeJSON(w, status, map[string]string{"error": msg})
}
