// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package carsrp implements the repo.Cars repository.
package carsrp

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

var _ repo.Cars = (*Repo)(nil)

func (cars *Repo) Conn(c repo.Conn) repo.CarsQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn)}
}

func (cars *Repo) Tx(tx repo.Tx) repo.CarsQueryer {
	return queryer[*postgres.Tx]{q: tx.(*postgres.Tx)}
}

type queryer[Q postgres.Queryer] struct {
	q Q
}

func (cq queryer[Q]) Upsert(ctx context.Context, cars []model.Car) (int64, error) {
	return Upsert(ctx, cq.q, cars)
}

func (cq queryer[Q]) IDs(ctx context.Context, parkID int64, externalIDs []string) (map[string]int64, error) {
	return IDs(ctx, cq.q, parkID, externalIDs)
}

func (cq queryer[Q]) List(ctx context.Context, parkID int64) ([]model.Car, error) {
	return List(ctx, cq.q, parkID)
}
