// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// SkipReason explains why a fetched record was not persisted.
type SkipReason string

// Known skip reasons. A record is skipped when one of its mandatory
// parents is not present in the local store.
const (
	SkipMissingDriver SkipReason = "missing-driver"
	SkipMissingOrder  SkipReason = "missing-order"
)

// ParkResult collects the outcome of one task for one park.
type ParkResult struct {
	Park     string // external id of the park
	Upserted int
	Skipped  map[SkipReason]int
	Err      error
}

// Skip counts n records which were skipped for the given reason.
func (pr *ParkResult) Skip(reason SkipReason, n int) {
	if n == 0 {
		return
	}
	if pr.Skipped == nil {
		pr.Skipped = make(map[SkipReason]int)
	}
	pr.Skipped[reason] += n
}

// SkippedTotal returns the number of skipped records of all reasons.
func (pr *ParkResult) SkippedTotal() int {
	n := 0
	for _, c := range pr.Skipped {
		n += c
	}
	return n
}

// SyncReport aggregates the per-park results of a sync routine run.
// Failures of individual parks are kept in their ParkResult, so one
// report may contain both succeeded and failed parks.
type SyncReport struct {
	Task       Task
	StartedAt  time.Time
	FinishedAt time.Time
	Parks      []ParkResult
}

// Add appends pr to the report.
func (r *SyncReport) Add(pr ParkResult) {
	r.Parks = append(r.Parks, pr)
}

// Sort orders the park results by their external ids. Parks which are
// processed concurrently finish in any order, so reports are sorted
// before being presented.
func (r *SyncReport) Sort() {
	sort.Slice(r.Parks, func(i, j int) bool {
		return r.Parks[i].Park < r.Parks[j].Park
	})
}

// Upserted returns the number of upserted records of all parks.
func (r *SyncReport) Upserted() int {
	n := 0
	for _, pr := range r.Parks {
		n += pr.Upserted
	}
	return n
}

// Skipped sums up the skip counters of all parks per reason.
func (r *SyncReport) Skipped() map[SkipReason]int {
	m := make(map[SkipReason]int)
	for _, pr := range r.Parks {
		for reason, n := range pr.Skipped {
			m[reason] += n
		}
	}
	return m
}

// Err joins the errors of all failed parks, annotated with their park
// ids. It returns nil if no park failed.
func (r *SyncReport) Err() error {
	var errs []error
	for _, pr := range r.Parks {
		if pr.Err != nil {
			errs = append(errs, fmt.Errorf("park %s: %w", pr.Park, pr.Err))
		}
	}
	return errors.Join(errs...)
}

// Status summarizes the report as a RunStatus.
func (r *SyncReport) Status() RunStatus {
	failed := 0
	for _, pr := range r.Parks {
		if pr.Err != nil {
			failed++
		}
	}
	switch {
	case failed == 0:
		return RunSucceeded
	case failed == len(r.Parks):
		return RunFailed
	default:
		return RunPartial
	}
}

// LogValue implements slog.LogValuer with the aggregated counters.
func (r *SyncReport) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("status", string(r.Status())),
		slog.Int("parks", len(r.Parks)),
		slog.Int("upserted", r.Upserted()),
		slog.Duration("took", r.FinishedAt.Sub(r.StartedAt)),
	}
	for reason, n := range r.Skipped() {
		attrs = append(attrs, slog.Int("skipped_"+string(reason), n))
	}
	return slog.GroupValue(attrs...)
}

// RunStatus is the coarse outcome of a sync routine run.
type RunStatus string

// Valid values for the RunStatus.
const (
	RunSucceeded RunStatus = "succeeded" // all parks succeeded
	RunPartial   RunStatus = "partial"   // some parks failed
	RunFailed    RunStatus = "failed"    // all parks failed
)

// SyncRun is the stored audit record of one sync routine run.
type SyncRun struct {
	ID         int64
	Task       Task
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	Parks      int
	Upserted   int
	Skipped    int
	Message    string
}

// NewSyncRun summarizes r as a SyncRun audit record.
func NewSyncRun(r *SyncReport) *SyncRun {
	skipped := 0
	for _, n := range r.Skipped() {
		skipped += n
	}
	msg := ""
	if err := r.Err(); err != nil {
		msg = err.Error()
	}
	return &SyncRun{
		Task:       r.Task,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Status:     r.Status(),
		Parks:      len(r.Parks),
		Upserted:   r.Upserted(),
		Skipped:    skipped,
		Message:    msg,
	}
}
