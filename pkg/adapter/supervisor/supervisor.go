// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package supervisor runs the long-lived services of fleetsync, i.e.,
// the REST API server and the scheduler, under a suture supervisor
// which restarts them with a backoff if they fail.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// ShutdownTimeout bounds the graceful stop of each service.
const ShutdownTimeout = 10 * time.Second

// New creates the root supervisor which logs its events using l.
func New(l *slog.Logger) *suture.Supervisor {
	h := &sutureslog.Handler{Logger: l}
	return suture.New("fleetsync", suture.Spec{
		EventHook:        h.MustHook(),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          ShutdownTimeout,
	})
}

// HTTPServer is a suture.Service which serves h on the addr address.
type HTTPServer struct {
	addr    string
	handler http.Handler
}

// NewHTTPServer creates an HTTPServer service.
func NewHTTPServer(addr string, h http.Handler) *HTTPServer {
	return &HTTPServer{addr: addr, handler: h}
}

// Serve listens until ctx is cancelled and then shuts the server down
// gracefully. A fresh http.Server is used per call, since a server may
// not be restarted after its shutdown.
func (s *HTTPServer) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}
	errCh := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving on %s: %w", s.addr, err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), ShutdownTimeout,
	)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	<-errCh
	return ctx.Err()
}

// String implements fmt.Stringer, naming the service for suture.
func (s *HTTPServer) String() string {
	return "http-server"
}
