// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package runsrp implements the repo.Runs repository which keeps the
// audit records of the sync routine runs.
package runsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

type gRun struct {
	ID         int64 `gorm:"primaryKey"`
	Task       string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Parks      int
	Upserted   int
	Skipped    int
	Message    string
}

func (gr *gRun) TableName() string {
	return "sync_runs"
}

func (gr *gRun) Model() (*model.SyncRun, error) {
	t, err := model.ParseTask(gr.Task)
	if err != nil {
		return nil, fmt.Errorf("run %d: %w", gr.ID, err)
	}
	return &model.SyncRun{
		ID:         gr.ID,
		Task:       t,
		StartedAt:  gr.StartedAt,
		FinishedAt: gr.FinishedAt,
		Status:     model.RunStatus(gr.Status),
		Parks:      gr.Parks,
		Upserted:   gr.Upserted,
		Skipped:    gr.Skipped,
		Message:    gr.Message,
	}, nil
}

// Create inserts r and sets its ID.
func Create[Q postgres.Queryer](ctx context.Context, q Q, r *model.SyncRun) error {
	if err := r.Task.Validate(); err != nil {
		return err
	}
	gr := &gRun{
		Task:       r.Task.String(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Status:     string(r.Status),
		Parks:      r.Parks,
		Upserted:   r.Upserted,
		Skipped:    r.Skipped,
		Message:    r.Message,
	}
	if err := q.GORM(ctx).Create(gr).Error; err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	r.ID = gr.ID
	return nil
}

func Recent[Q postgres.Queryer](ctx context.Context, q Q, limit int) ([]model.SyncRun, error) {
	var grs []gRun
	err := q.GORM(ctx).Order("id DESC").Limit(limit).Find(&grs).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	rs := make([]model.SyncRun, len(grs))
	for i := range grs {
		r, err := grs[i].Model()
		if err != nil {
			return nil, err
		}
		rs[i] = *r
	}
	return rs, nil
}

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

var _ repo.Runs = (*Repo)(nil)

func (runs *Repo) Conn(c repo.Conn) repo.RunsQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn)}
}

func (runs *Repo) Tx(tx repo.Tx) repo.RunsQueryer {
	return queryer[*postgres.Tx]{q: tx.(*postgres.Tx)}
}

type queryer[Q postgres.Queryer] struct {
	q Q
}

func (rq queryer[Q]) Create(ctx context.Context, r *model.SyncRun) error {
	return Create(ctx, rq.q, r)
}

func (rq queryer[Q]) Recent(ctx context.Context, limit int) ([]model.SyncRun, error) {
	return Recent(ctx, rq.q, limit)
}
