// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

// Backfill synchronizes the orders and their transactions of all
// active parks for the [from, to] range of dates, one day at a time.
//
// The job names a persisted watermark which holds the last completed
// date. Processing starts at the day after the watermark (or at from,
// whichever is later), so a range which was partially processed by an
// interrupted or failed run is resumed at its first incomplete day.
// A day is completed when the orders and transactions of all active
// parks are synchronized with no error, and only then the watermark
// advances to that day. The first failing day stops the backfill and
// its error is returned, leaving the watermark on the previous day.
//
// Each day covers [00:00:00, 23:59:59] in the time zone of each park.
func (uc *UseCase) Backfill(
	ctx context.Context, job string, from, to model.Date,
) (model.BackfillStatus, error) {
	if job == "" {
		return model.BackfillStatus{}, cerr.BadRequest(errors.New("job name is empty"))
	}
	if to.Before(from) {
		return model.BackfillStatus{}, cerr.BadRequest(fmt.Errorf(
			"range end %s is before its start %s", to, from,
		))
	}
	w, err := uc.watermark(ctx, job)
	if err != nil {
		return model.BackfillStatus{}, err
	}
	start := from
	if w != nil && !w.Date.Before(start) {
		start = w.Date.AddDays(1)
	}
	parks, err := uc.activeParks(ctx)
	if err != nil {
		return model.BackfillStatus{}, err
	}
	for d := start; !d.After(to); d = d.AddDays(1) {
		if err := ctx.Err(); err != nil {
			return model.NewBackfillStatus(job, w, to), err
		}
		if err := uc.backfillDay(ctx, parks, d); err != nil {
			return model.NewBackfillStatus(job, w, to), fmt.Errorf(
				"backfilling %s: %w", d, err,
			)
		}
		err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
			return uc.repos.Watermarks.Conn(c).Advance(ctx, job, d, uc.now())
		})
		if err != nil {
			return model.BackfillStatus{}, fmt.Errorf(
				"advancing %q watermark to %s: %w", job, d, err,
			)
		}
		w = &model.Watermark{Job: job, Date: d}
		log.Info(
			ctx, "backfill day is completed",
			log.Task(job), slog.String("date", d.String()),
		)
	}
	return model.NewBackfillStatus(job, w, to), nil
}

// backfillDay runs the orders and then the transactions task for the
// day d. Any park failure fails the whole day.
func (uc *UseCase) backfillDay(
	ctx context.Context, parks []model.Park, d model.Date,
) error {
	w := d.Window()
	steps := []struct {
		task model.Task
		f    parkFunc
	}{
		{model.TaskOrders, func(ctx context.Context, p *model.Park, pr *model.ParkResult) error {
			return uc.syncOrders(ctx, p, &w, pr)
		}},
		{model.TaskTransactions, uc.syncTransactions},
	}
	for _, s := range steps {
		report := uc.forEachPark(ctx, s.task, parks, s.f)
		uc.record(ctx, report)
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := report.Err(); err != nil {
			return fmt.Errorf("%s: %w", s.task, err)
		}
	}
	return nil
}

// BackfillStatus reports the progress of job towards the to date.
func (uc *UseCase) BackfillStatus(
	ctx context.Context, job string, to model.Date,
) (model.BackfillStatus, error) {
	w, err := uc.watermark(ctx, job)
	if err != nil {
		return model.BackfillStatus{}, err
	}
	return model.NewBackfillStatus(job, w, to), nil
}

// watermark returns the watermark of job or nil if it has none.
func (uc *UseCase) watermark(ctx context.Context, job string) (w *model.Watermark, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		w, err = uc.repos.Watermarks.Conn(c).Get(ctx, job)
		return err
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("loading %q watermark: %w", job, err)
	}
	return w, nil
}
