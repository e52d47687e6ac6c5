// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package balancesrp implements the repo.Balances repository.
// Balances are keyed by their external ids alone, because the fleet
// API assigns globally unique ids to the drivers financial accounts.
package balancesrp

import (
	"context"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
	"github.com/shopspring/decimal"
)

type gBalance struct {
	ID           int64 `gorm:"primaryKey"`
	ExternalID   string
	Balance      decimal.Decimal `gorm:"type:numeric"`
	BalanceLimit decimal.Decimal `gorm:"type:numeric"`
	Currency     string
	Type         string
}

func (gb *gBalance) TableName() string {
	return "balances"
}

var descriptor = postgres.MustDescriptor[gBalance](
	[]string{"external_id"},
	[]string{"balance", "balance_limit", "currency", "type"},
)

func Upsert[Q postgres.Queryer](ctx context.Context, q Q, balances []model.Balance) (int64, error) {
	gbs := make([]gBalance, len(balances))
	for i, b := range balances {
		gbs[i] = gBalance{
			ExternalID:   b.ExternalID,
			Balance:      b.Balance,
			BalanceLimit: b.BalanceLimit,
			Currency:     b.Currency,
			Type:         b.Type,
		}
	}
	return postgres.Upsert(ctx, q, descriptor, gbs)
}

func IDs[Q postgres.Queryer](ctx context.Context, q Q, externalIDs []string) (map[string]int64, error) {
	return postgres.IDs(ctx, q, descriptor.Table, 0, externalIDs)
}

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

var _ repo.Balances = (*Repo)(nil)

func (balances *Repo) Conn(c repo.Conn) repo.BalancesQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn)}
}

func (balances *Repo) Tx(tx repo.Tx) repo.BalancesQueryer {
	return queryer[*postgres.Tx]{q: tx.(*postgres.Tx)}
}

type queryer[Q postgres.Queryer] struct {
	q Q
}

func (bq queryer[Q]) Upsert(ctx context.Context, balances []model.Balance) (int64, error) {
	return Upsert(ctx, bq.q, balances)
}

func (bq queryer[Q]) IDs(ctx context.Context, externalIDs []string) (map[string]int64, error) {
	return IDs(ctx, bq.q, externalIDs)
}
