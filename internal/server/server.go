// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the scoring pipeline, signature verification, and
// the trend predictor over HTTP. Scored runs are handed to a Recorder once
// the response has been computed, so storage never delays or fails a
// scoring request.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pdiddy/ray-engine/internal/pipeline"
	"github.com/pdiddy/ray-engine/internal/trend"
	"github.com/pdiddy/ray-engine/pkg/types"
)

// maxBody bounds request bodies. A full run is well under 1 MiB.
const maxBody = 4 << 20

// HistorySource returns the stored run snapshots of a subject.
type HistorySource interface {
	History(ctx context.Context, subjectID string) ([]types.RunSnapshot, error)
}

// Deps holds everything the handlers need. Recorder and History are
// optional: without a Recorder results are not persisted, and without a
// History the subject prediction route answers 503.
type Deps struct {
	Pipeline  *pipeline.Pipeline
	Recorder  *pipeline.Recorder
	History   HistorySource
	Predictor *trend.Predictor
	Log       *zap.Logger
}

// Server is the HTTP adapter.
type Server struct {
	deps Deps
	log  *zap.Logger
}

// New returns a server over deps.
func New(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Predictor == nil {
		deps.Predictor = trend.New(types.DefaultTrendRules(), nil)
	}
	return &Server{deps: deps, log: log}
}

// Handler returns the router with all endpoints.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/score", s.score).Methods(http.MethodPost)
	v1.HandleFunc("/verify", s.verify).Methods(http.MethodPost)
	v1.HandleFunc("/predict", s.predict).Methods(http.MethodPost)
	v1.HandleFunc("/subjects/{subject}/prediction", s.subjectPrediction).Methods(http.MethodGet)

	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg types.ServerConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr, err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg types.ServerConfig) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
