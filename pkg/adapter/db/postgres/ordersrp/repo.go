// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ordersrp implements the repo.Orders repository.
package ordersrp

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

var _ repo.Orders = (*Repo)(nil)

func (orders *Repo) Conn(c repo.Conn) repo.OrdersQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn)}
}

func (orders *Repo) Tx(tx repo.Tx) repo.OrdersQueryer {
	return queryer[*postgres.Tx]{q: tx.(*postgres.Tx)}
}

type queryer[Q postgres.Queryer] struct {
	q Q
}

func (oq queryer[Q]) Upsert(ctx context.Context, orders []model.Order) (int64, error) {
	return Upsert(ctx, oq.q, orders)
}

func (oq queryer[Q]) IDs(ctx context.Context, parkID int64, externalIDs []string) (map[string]int64, error) {
	return IDs(ctx, oq.q, parkID, externalIDs)
}

func (oq queryer[Q]) Pending(ctx context.Context, parkID, afterID int64, limit int) ([]model.Order, error) {
	return Pending(ctx, oq.q, parkID, afterID, limit)
}

func (oq queryer[Q]) MarkTransactionsIngested(ctx context.Context, ids []int64) error {
	return MarkTransactionsIngested(ctx, oq.q, ids)
}

