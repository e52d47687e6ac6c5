// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package metrics defines the Prometheus collectors of fleetsync.
// Collectors are registered in the default registry, which is served
// by the /metrics route of the gin adapter.
package metrics

import (
	"strconv"
	"time"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

var (
	// FleetRequests counts the fleet API requests by endpoint and
	// response status code. Requests which got no response are
	// counted with the "error" code.
	FleetRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsync_fleet_requests_total",
			Help: "Total number of fleet API requests",
		},
		[]string{"endpoint", "code"},
	)

	FleetRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetsync_fleet_request_duration_seconds",
			Help:    "Duration of fleet API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// FleetRetries counts the rate-limited attempts which were
	// retried after a backoff.
	FleetRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsync_fleet_retries_total",
			Help: "Total number of fleet API requests retried after HTTP 429",
		},
		[]string{"endpoint"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetsync_fleet_breaker_state",
			Help: "Fleet API circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	SyncParkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetsync_sync_park_duration_seconds",
			Help:    "Duration of one task for one park in seconds",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"task"},
	)

	SyncParkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsync_sync_park_failures_total",
			Help: "Total number of failed park syncs",
		},
		[]string{"task"},
	)

	SyncUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsync_sync_upserted_total",
			Help: "Total number of upserted records",
		},
		[]string{"task"},
	)

	SyncSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsync_sync_skipped_total",
			Help: "Total number of records skipped due to unresolved references",
		},
		[]string{"task", "reason"},
	)

	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsync_sync_runs_total",
			Help: "Total number of sync runs by their final status",
		},
		[]string{"task", "status"},
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetsync_sync_last_success_timestamp",
			Help: "Unix time of the last succeeded run of each task",
		},
		[]string{"task"},
	)
)

// ObserveRequest records one fleet API request. A zero code means
// that no response was received.
func ObserveRequest(endpoint string, code int, took time.Duration) {
	c := "error"
	if code != 0 {
		c = strconv.Itoa(code)
	}
	FleetRequests.WithLabelValues(endpoint, c).Inc()
	FleetRequestDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

// SetBreakerState exports the state of the name circuit breaker.
func SetBreakerState(name string, s gobreaker.State) {
	v := -1.0
	switch s {
	case gobreaker.StateClosed:
		v = 0
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	BreakerState.WithLabelValues(name).Set(v)
}

// SyncObserver exports the sync progress. It implements the
// syncuc.Observer interface.
type SyncObserver struct{}

// ParkDone records the result of one park.
func (SyncObserver) ParkDone(
	task model.Task, pr *model.ParkResult, took time.Duration,
) {
	t := task.String()
	SyncParkDuration.WithLabelValues(t).Observe(took.Seconds())
	if pr.Err != nil {
		SyncParkFailures.WithLabelValues(t).Inc()
	}
	SyncUpserted.WithLabelValues(t).Add(float64(pr.Upserted))
	for reason, n := range pr.Skipped {
		SyncSkipped.WithLabelValues(t, string(reason)).Add(float64(n))
	}
}

// RunDone records the final status of a run.
func (SyncObserver) RunDone(r *model.SyncReport) {
	t := r.Task.String()
	st := r.Status()
	SyncRuns.WithLabelValues(t, string(st)).Inc()
	if st == model.RunSucceeded {
		SyncLastSuccess.WithLabelValues(t).Set(float64(r.FinishedAt.Unix()))
	}
}
