// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls   atomic.Int32
	started chan model.Task
	release chan struct{}
}

func (fr *fakeRunner) Run(
	ctx context.Context, task model.Task, w *model.Window,
) (*model.SyncReport, error) {
	fr.calls.Add(1)
	if fr.started != nil {
		fr.started <- task
	}
	if fr.release != nil {
		select {
		case <-fr.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &model.SyncReport{Task: task}, nil
}

func TestNewRejectsBadEntries(t *testing.T) {
	r := &fakeRunner{}
	for _, tc := range []struct {
		name    string
		entries []Entry
	}{
		{"invalid task", []Entry{{Task: model.TaskInvalid, Spec: "@hourly"}}},
		{"bad spec", []Entry{{Task: model.TaskCars, Spec: "every hour"}}},
		{"duplicated task", []Entry{
			{Task: model.TaskCars, Spec: "@hourly"},
			{Task: model.TaskCars, Spec: "*/5 * * * *"},
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(r, tc.entries, nil)
			assert.Error(t, err)
		})
	}
	_, err := New(nil, nil, nil)
	assert.Error(t, err, "nil runner")
}

func TestJobSkipsOverlappingRuns(t *testing.T) {
	r := &fakeRunner{
		started: make(chan model.Task, 1),
		release: make(chan struct{}),
	}
	s, err := New(r, []Entry{{Task: model.TaskOrders, Spec: "@hourly"}}, nil)
	require.NoError(t, err)

	j := s.job(context.Background(), model.TaskOrders)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		j.Run()
	}()
	assert.Equal(t, model.TaskOrders, <-r.started)
	j.Run() // returns immediately since the first run is in progress
	close(r.release)
	wg.Wait()
	assert.EqualValues(t, 1, r.calls.Load())

	r.started = nil
	j.Run()
	assert.EqualValues(t, 2, r.calls.Load(), "later triggers must run")
}

func TestServeRunsScheduledTasks(t *testing.T) {
	r := &fakeRunner{started: make(chan model.Task, 4)}
	s, err := New(r, []Entry{{Task: model.TaskCars, Spec: "@every 1s"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "scheduler", s.String())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx)
	}()
	select {
	case task := <-r.started:
		assert.Equal(t, model.TaskCars, task)
	case <-time.After(5 * time.Second):
		t.Fatal("the cars task was not triggered")
	}
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
