// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package driversrp implements the repo.Drivers repository.
package driversrp

import (
	"context"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

var _ repo.Drivers = (*Repo)(nil)

func (drivers *Repo) Conn(c repo.Conn) repo.DriversQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn)}
}

func (drivers *Repo) Tx(tx repo.Tx) repo.DriversQueryer {
	return queryer[*postgres.Tx]{q: tx.(*postgres.Tx)}
}

type queryer[Q postgres.Queryer] struct {
	q Q
}

func (dq queryer[Q]) Upsert(ctx context.Context, drivers []model.Driver) (int64, error) {
	return Upsert(ctx, dq.q, drivers)
}

func (dq queryer[Q]) IDs(ctx context.Context, parkID int64, externalIDs []string) (map[string]int64, error) {
	return IDs(ctx, dq.q, parkID, externalIDs)
}

func (dq queryer[Q]) List(ctx context.Context, parkID int64) ([]model.Driver, error) {
	return List(ctx, dq.q, parkID)
}
