// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package workrulesrp implements the repo.WorkRules repository.
package workrulesrp

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

var _ repo.WorkRules = (*Repo)(nil)

func (rules *Repo) Conn(c repo.Conn) repo.WorkRulesQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn)}
}

func (rules *Repo) Tx(tx repo.Tx) repo.WorkRulesQueryer {
	return queryer[*postgres.Tx]{q: tx.(*postgres.Tx)}
}

type queryer[Q postgres.Queryer] struct {
	q Q
}

func (wq queryer[Q]) Upsert(ctx context.Context, rules []model.WorkRule) (int64, error) {
	return Upsert(ctx, wq.q, rules)
}

func (wq queryer[Q]) IDs(ctx context.Context, parkID int64, externalIDs []string) (map[string]int64, error) {
	return IDs(ctx, wq.q, parkID, externalIDs)
}
