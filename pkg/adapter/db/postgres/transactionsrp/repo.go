// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package transactionsrp implements the repo.Transactions repository
// which covers the transactions and their category catalogue.
package transactionsrp

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

var _ repo.Transactions = (*Repo)(nil)

func (txs *Repo) Conn(c repo.Conn) repo.TransactionsQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn)}
}

func (txs *Repo) Tx(tx repo.Tx) repo.TransactionsQueryer {
	return queryer[*postgres.Tx]{q: tx.(*postgres.Tx)}
}

type queryer[Q postgres.Queryer] struct {
	q Q
}

func (tq queryer[Q]) Upsert(ctx context.Context, txs []model.Transaction) (int64, error) {
	return Upsert(ctx, tq.q, txs)
}

func (tq queryer[Q]) UpsertCategories(ctx context.Context, cs []model.TransactionCategory) (int64, error) {
	return UpsertCategories(ctx, tq.q, cs)
}
