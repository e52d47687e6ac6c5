// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package supervisor_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServerStopsOnCancel(t *testing.T) {
	s := supervisor.NewHTTPServer("127.0.0.1:0", http.NotFoundHandler())
	assert.Equal(t, "http-server", s.String())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(supervisor.ShutdownTimeout):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestHTTPServerReportsListenErrors(t *testing.T) {
	s := supervisor.NewHTTPServer("127.0.0.1:-1", http.NotFoundHandler())
	err := s.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:-1")
}

func TestSupervisorRunsServices(t *testing.T) {
	sup := supervisor.New(slog.Default())
	sup.Add(supervisor.NewHTTPServer("127.0.0.1:0", http.NotFoundHandler()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-time.After(2 * supervisor.ShutdownTimeout):
		t.Fatal("supervisor did not stop")
	}
}
