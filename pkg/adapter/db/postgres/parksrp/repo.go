// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package parksrp implements the repo.Parks repository.
package parksrp

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

var _ repo.Parks = (*Repo)(nil)

func (parks *Repo) Conn(c repo.Conn) repo.ParksQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn)}
}

func (parks *Repo) Tx(tx repo.Tx) repo.ParksQueryer {
	return queryer[*postgres.Tx]{q: tx.(*postgres.Tx)}
}

type queryer[Q postgres.Queryer] struct {
	q Q
}

func (pq queryer[Q]) List(ctx context.Context, activeOnly bool) ([]model.Park, error) {
	return List(ctx, pq.q, activeOnly)
}

func (pq queryer[Q]) ByExternalID(ctx context.Context, externalID string) (*model.Park, error) {
	return ByExternalID(ctx, pq.q, externalID)
}

func (pq queryer[Q]) Create(ctx context.Context, p *model.Park) (*model.Park, error) {
	return Create(ctx, pq.q, p)
}

func (pq queryer[Q]) Update(ctx context.Context, p *model.Park) (*model.Park, error) {
	return Update(ctx, pq.q, p)
}
