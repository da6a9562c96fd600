// Package service exposes the harness over HTTP: prometheus metrics and
// a health probe, served only when an address is configured.
package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/storageward/s3-acceptor/metrics"
)

type Service struct {
	server *http.Server
	log    zerolog.Logger
}

func New(log zerolog.Logger) *Service {
	return &Service{log: log}
}

// Start serves /healthz and /metrics on addr in the background. Listen
// errors are logged and counted, never fatal: a busy port must not sink
// a test run.
func (s *Service) Start(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	s.server = &http.Server{
		Handler:           c.Handler(mux),
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("metrics server failed")
			metrics.RecordError("metrics_server")
		}
	}()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Info().Msg("metrics server shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.log.Debug().Str("path", r.URL.Path).Msg("health check")
	w.Write([]byte("OK")) //nolint:errcheck
}
