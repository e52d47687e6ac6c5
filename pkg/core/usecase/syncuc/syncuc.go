// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package syncuc contains the sync UseCase which pulls the parks data
// from the fleet API into the local store. It supports two use cases:
//  1. Running one sync task (work rules, cars, drivers, orders,
//     transactions, or transaction categories) over all active parks,
//     for the default trailing window or for an explicit one.
//  2. Backfilling orders and their transactions for a closed range of
//     dates, one day at a time, resuming from a persisted watermark.
//
// Each park is processed by its own sequence of page fetches and
// upserts. A failing park is logged and reported, but it does not
// stop the other parks. Parks may be processed concurrently by a
// bounded number of workers, while the pages of one park are always
// fetched and persisted one after the other.
package syncuc

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

// Observer is notified about the progress of sync runs, e.g., in order
// to export them as metrics. Its methods may be called concurrently.
type Observer interface {
	// ParkDone is called after each park finishes one task.
	ParkDone(task model.Task, pr *model.ParkResult, took time.Duration)

	// RunDone is called after all parks finish one task.
	RunDone(r *model.SyncReport)
}

// UseCase represents the sync use case. It holds a database connection
// pool, the repositories, the fleet API client, and the sync settings.
type UseCase struct {
	pool  repo.Pool
	repos repo.Repos
	api   fleet.API

	now        func() time.Time
	defaultLoc *time.Location
	trailing   time.Duration
	workers    int
	batchSize  int
	observer   Observer
}

// New instantiates a sync use case.
// Required parameters are passed individually, while the optional
// settings are passed as functional options. See the With* functions
// for the defaults of the optional settings.
func New(
	p repo.Pool, r repo.Repos, api fleet.API, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, repos: r, api: api}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.defaultLoc == nil {
		loc, err := time.LoadLocation(DefaultTimeZone)
		if err != nil {
			return nil, fmt.Errorf("loading default time zone: %w", err)
		}
		uc.defaultLoc = loc
	}
	if uc.trailing == 0 {
		uc.trailing = DefaultTrailingWindow
	}
	if uc.workers == 0 {
		uc.workers = 1
	}
	if uc.batchSize == 0 {
		uc.batchSize = DefaultBatchSize
	}
	if uc.observer == nil {
		uc.observer = nopObserver{}
	}
	return uc, nil
}

// Run runs the task over all active parks and returns its report.
// The w window is only accepted by the orders task and a nil w asks for
// the default trailing window. Failures of individual parks are kept
// in the returned report. A non-nil error means that the run could not
// be started or was cancelled, in which case the report (if not nil)
// covers the parks which finished before the cancellation.
func (uc *UseCase) Run(
	ctx context.Context, task model.Task, w *model.Window,
) (*model.SyncReport, error) {
	if err := task.Validate(); err != nil {
		return nil, cerr.BadRequest(err)
	}
	if w != nil {
		if !task.Windowed() {
			return nil, cerr.BadRequest(fmt.Errorf(
				"%s task does not accept a window", task,
			))
		}
		if err := w.Validate(); err != nil {
			return nil, cerr.BadRequest(err)
		}
	}
	parks, err := uc.activeParks(ctx)
	if err != nil {
		return nil, err
	}
	f := uc.parkTask(task, w)
	report := uc.forEachPark(ctx, task, parks, f)
	uc.record(context.WithoutCancel(ctx), report)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("%s sync is interrupted: %w", task, err)
	}
	return report, nil
}

// Runs returns the audit records of the last limit runs.
func (uc *UseCase) Runs(ctx context.Context, limit int) (rs []model.SyncRun, err error) {
	if limit <= 0 {
		return nil, cerr.BadRequest(fmt.Errorf("limit (%d) is not positive", limit))
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		rs, err = uc.repos.Runs.Conn(c).Recent(ctx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing recent runs: %w", err)
	}
	return rs, nil
}

func (uc *UseCase) parkTask(task model.Task, w *model.Window) parkFunc {
	switch task {
	case model.TaskWorkRules:
		return uc.syncWorkRules
	case model.TaskCars:
		return uc.syncCars
	case model.TaskDrivers:
		return uc.syncDrivers
	case model.TaskOrders:
		return func(ctx context.Context, p *model.Park, pr *model.ParkResult) error {
			return uc.syncOrders(ctx, p, w, pr)
		}
	case model.TaskTransactions:
		return uc.syncTransactions
	default:
		return uc.syncCategories
	}
}

func (uc *UseCase) activeParks(ctx context.Context) (parks []model.Park, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		parks, err = uc.repos.Parks.Conn(c).List(ctx, true)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing active parks: %w", err)
	}
	return parks, nil
}

// record stores the audit record of a run. Failing to store it does
// not fail the run since its data is already persisted.
// record stores the audit row of a run. Its ctx must outlive the
// run, so interrupted runs are recorded too.
func (uc *UseCase) record(ctx context.Context, report *model.SyncReport) {
	uc.observer.RunDone(report)
	log.Info(
		ctx, "sync run finished",
		log.Task(report.Task.String()),
		log.Valuer("report", report),
	)
	run := model.NewSyncRun(report)
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return uc.repos.Runs.Conn(c).Create(ctx, run)
	})
	if err != nil {
		log.Warn(
			ctx, "storing sync run failed",
			log.Task(report.Task.String()), log.Err("err", err),
		)
	}
}

type nopObserver struct{}

func (nopObserver) ParkDone(model.Task, *model.ParkResult, time.Duration) {}

func (nopObserver) RunDone(*model.SyncReport) {}
