// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package probe

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/pkg/log"
	"github.com/iotexproject/iotex-bridge/pkg/util/httputil"
)

type (
	// Check reports whether a component is ready to serve
	Check func(context.Context) error

	// Option is used to set probe server's options.
	Option interface {
		SetOption(*Server)
	}

	// Server is a http server for service probe. It serves liveness, readiness and metrics
	Server struct {
		ready  atomic.Bool
		server http.Server

		mu     sync.RWMutex
		checks map[string]Check
	}

	checkOption struct {
		name  string
		check Check
	}
)

// WithReadinessCheck adds a named check to the readiness endpoint
func WithReadinessCheck(name string, check Check) Option {
	return &checkOption{name: name, check: check}
}

func (o *checkOption) SetOption(s *Server) { s.checks[o.name] = o.check }

// New creates a new probe server.
func New(port int, opts ...Option) *Server {
	s := &Server{
		checks: make(map[string]Check),
	}
	for _, opt := range opts {
		opt.SetOption(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/liveness", successHandleFunc)
	mux.HandleFunc("/readiness", s.readiness)
	mux.HandleFunc("/health", s.readiness)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = httputil.NewServer(fmt.Sprintf(":%d", port), mux)
	return s
}

// AddCheck adds or replaces a named readiness check
func (s *Server) AddCheck(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	if err := s.check(r.Context()); err != nil {
		log.L().Debug("Service is not ready.", zap.Error(err))
		failureHandleFunc(w, r)
		return
	}
	successHandleFunc(w, r)
}

func (s *Server) check(ctx context.Context) error {
	if !s.ready.Load() {
		return errors.New("not ready")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			return errors.Wrapf(err, "check %s", name)
		}
	}
	return nil
}

// Start starts the probe server and starts returning success status on liveness endpoint.
func (s *Server) Start(_ context.Context) error {
	ln, err := httputil.LimitListener(s.server.Addr)
	if err != nil {
		return errors.Wrap(err, "failed to listen on probe port")
	}
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.L().Error("Probe server stopped.", zap.Error(err))
		}
	}()
	return nil
}

// Ready makes the probe server starts returning status on readiness and
// health endpoint.
func (s *Server) Ready() { s.ready.Store(true) }

// NotReady makes the probe server starts returning failure status on readiness and
// health endpoint.
func (s *Server) NotReady() { s.ready.Store(false) }

// Stop shutdown the probe server.
func (s *Server) Stop(ctx context.Context) error { return s.server.Shutdown(ctx) }

func successHandleFunc(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.L().Warn("Failed to send http response.", zap.Error(err))
	}
}

func failureHandleFunc(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusServiceUnavailable)
	if _, err := w.Write([]byte("FAIL")); err != nil {
		log.L().Warn("Failed to send http response.", zap.Error(err))
	}
}
