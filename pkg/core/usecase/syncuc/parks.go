// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncuc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/momeni/fleetsync/pkg/core/model"
	"golang.org/x/sync/errgroup"
)

// parkFunc synchronizes one park, updating the counters of pr.
type parkFunc func(ctx context.Context, p *model.Park, pr *model.ParkResult) error

// forEachPark runs f for each park with at most uc.workers parks in
// flight. Errors of f are contained in the ParkResult of their park.
// Parks which are not started before ctx is cancelled are left out of
// the returned report.
func (uc *UseCase) forEachPark(
	ctx context.Context,
	task model.Task,
	parks []model.Park,
	f parkFunc,
) *model.SyncReport {
	report := &model.SyncReport{Task: task, StartedAt: uc.now()}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(uc.workers)
	for i := range parks {
		if ctx.Err() != nil {
			break
		}
		p := &parks[i]
		g.Go(func() error {
			pr := uc.syncPark(ctx, task, p, f)
			mu.Lock()
			report.Add(pr)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	report.FinishedAt = uc.now()
	report.Sort()
	return report
}

func (uc *UseCase) syncPark(
	ctx context.Context, task model.Task, p *model.Park, f parkFunc,
) model.ParkResult {
	start := time.Now()
	pr := model.ParkResult{Park: p.ExternalID}
	err := fleet.CredentialsOf(p).Validate()
	if err == nil {
		err = f(ctx, p, &pr)
	}
	if err != nil {
		pr.Err = err
		log.Error(
			ctx, "syncing park failed",
			log.Task(task.String()), log.Park(p.ExternalID),
			log.Err("err", err),
		)
	} else {
		log.Debug(
			ctx, "park is synced",
			log.Task(task.String()), log.Park(p.ExternalID),
		)
	}
	uc.observer.ParkDone(task, &pr, time.Since(start))
	return pr
}

// location returns the time zone of p or the default location.
func (uc *UseCase) location(p *model.Park) (*time.Location, error) {
	loc, err := p.Location(uc.defaultLoc)
	if err != nil {
		return nil, fmt.Errorf("park time zone: %w", err)
	}
	return loc, nil
}
