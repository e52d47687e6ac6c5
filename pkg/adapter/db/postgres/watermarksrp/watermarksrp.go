// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package watermarksrp implements the repo.Watermarks repository.
package watermarksrp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
	"gorm.io/gorm"
)

type gWatermark struct {
	Job     string    `gorm:"primaryKey"`
	Date    time.Time `gorm:"type:date"`
	Updated time.Time `gorm:"column:updated_at"`
}

func (gw *gWatermark) TableName() string {
	return "watermarks"
}

func (gw *gWatermark) Model() *model.Watermark {
	return &model.Watermark{
		Job:       gw.Job,
		Date:      model.DateOf(gw.Date),
		UpdatedAt: gw.Updated,
	}
}

func Get[Q postgres.Queryer](ctx context.Context, q Q, job string) (*model.Watermark, error) {
	var gw gWatermark
	err := q.GORM(ctx).Where("job = ?", job).Take(&gw).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, repo.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gw.Model(), nil
}

// Advance moves the watermark of job forward to d. The conflicting
// row is only updated if its date is before d, so concurrent or
// repeated backfills never move a watermark back.
func Advance[Q postgres.Queryer](ctx context.Context, q Q, job string, d model.Date, now time.Time) error {
	_, err := q.Exec(ctx, `INSERT INTO watermarks (job, date, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (job) DO UPDATE
SET date = excluded.date, updated_at = excluded.updated_at
WHERE watermarks.date < excluded.date`, job, d.String(), now)
	if err != nil {
		return fmt.Errorf("advancing %q watermark to %v: %w", job, d, err)
	}
	return nil
}

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

var _ repo.Watermarks = (*Repo)(nil)

func (wms *Repo) Conn(c repo.Conn) repo.WatermarksQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn)}
}

func (wms *Repo) Tx(tx repo.Tx) repo.WatermarksQueryer {
	return queryer[*postgres.Tx]{q: tx.(*postgres.Tx)}
}

type queryer[Q postgres.Queryer] struct {
	q Q
}

func (wq queryer[Q]) Get(ctx context.Context, job string) (*model.Watermark, error) {
	return Get(ctx, wq.q, job)
}

func (wq queryer[Q]) Advance(ctx context.Context, job string, d model.Date, now time.Time) error {
	return Advance(ctx, wq.q, job, d, now)
}
