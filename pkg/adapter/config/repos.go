// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/balancesrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/carsrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/driversrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/ordersrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/parksrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/runsrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/transactionsrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/watermarksrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/workrulesrp"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

// NewRepos instantiates the PostgreSQL repositories of all entities.
func NewRepos() repo.Repos {
	return repo.Repos{
		Parks:        parksrp.New(),
		WorkRules:    workrulesrp.New(),
		Cars:         carsrp.New(),
		Balances:     balancesrp.New(),
		Drivers:      driversrp.New(),
		Orders:       ordersrp.New(),
		Transactions: transactionsrp.New(),
		Watermarks:   watermarksrp.New(),
		Runs:         runsrp.New(),
	}
}
