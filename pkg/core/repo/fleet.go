// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/momeni/fleetsync/pkg/core/model"
)

// Repo is implemented by every entity repository. Conn and Tx unwrap
// their argument as required by the implementation and return a Q
// queryer which runs its statements on that connection/transaction.
type Repo[Q any] interface {
	Conn(Conn) Q
	Tx(Tx) Q
}

// Repos bundles the entity repositories which the use cases need.
type Repos struct {
	Parks        Parks
	WorkRules    WorkRules
	Cars         Cars
	Balances     Balances
	Drivers      Drivers
	Orders       Orders
	Transactions Transactions
	Watermarks   Watermarks
	Runs         Runs
}

// Parks is the repository of the registered parks.
type Parks = Repo[ParksQueryer]

// ParksQueryer manages parks. Parks are not upserted from the fleet
// API, but registered and updated by an administrator.
type ParksQueryer interface {
	// List returns all parks ordered by their city and external id.
	// If activeOnly is true, inactive parks are excluded.
	List(ctx context.Context, activeOnly bool) ([]model.Park, error)

	// ByExternalID returns the park or ErrNotFound.
	ByExternalID(ctx context.Context, externalID string) (*model.Park, error)

	// Create inserts p and returns it with its local ID.
	Create(ctx context.Context, p *model.Park) (*model.Park, error)

	// Update overwrites all fields of the park which has the same
	// external id as p, returning ErrNotFound if it does not exist.
	Update(ctx context.Context, p *model.Park) (*model.Park, error)
}

// WorkRules is the repository of the work rules.
type WorkRules = Repo[WorkRulesQueryer]

// WorkRulesQueryer upserts work rules keyed by (park, external id).
type WorkRulesQueryer interface {
	Upsert(ctx context.Context, rules []model.WorkRule) (int64, error)

	// IDs maps the given external ids of a park to their local IDs.
	// Unknown external ids are absent from the returned map.
	IDs(ctx context.Context, parkID int64, externalIDs []string) (map[string]int64, error)
}

// Cars is the repository of the cars.
type Cars = Repo[CarsQueryer]

// CarsQueryer upserts cars keyed by (park, external id).
type CarsQueryer interface {
	Upsert(ctx context.Context, cars []model.Car) (int64, error)
	IDs(ctx context.Context, parkID int64, externalIDs []string) (map[string]int64, error)
	List(ctx context.Context, parkID int64) ([]model.Car, error)
}

// Balances is the repository of the drivers financial accounts.
type Balances = Repo[BalancesQueryer]

// BalancesQueryer upserts balances keyed by their external ids which
// are unique among all parks.
type BalancesQueryer interface {
	Upsert(ctx context.Context, balances []model.Balance) (int64, error)
	IDs(ctx context.Context, externalIDs []string) (map[string]int64, error)
}

// Drivers is the repository of the drivers.
type Drivers = Repo[DriversQueryer]

// DriversQueryer upserts drivers keyed by (park, external id).
type DriversQueryer interface {
	Upsert(ctx context.Context, drivers []model.Driver) (int64, error)
	IDs(ctx context.Context, parkID int64, externalIDs []string) (map[string]int64, error)
	List(ctx context.Context, parkID int64) ([]model.Driver, error)
}

// Orders is the repository of the orders.
type Orders = Repo[OrdersQueryer]

// OrdersQueryer upserts orders keyed by their external ids.
// The transactions_ingested flag is never changed by Upsert, so a
// resync of an order does not cause its transactions to be refetched.
type OrdersQueryer interface {
	Upsert(ctx context.Context, orders []model.Order) (int64, error)
	IDs(ctx context.Context, parkID int64, externalIDs []string) (map[string]int64, error)

	// Pending returns up to limit orders of a park whose transactions
	// are not ingested yet and whose local IDs are greater than afterID,
	// ordered by their local IDs.
	Pending(ctx context.Context, parkID, afterID int64, limit int) ([]model.Order, error)

	// MarkTransactionsIngested sets the transactions_ingested flag.
	MarkTransactionsIngested(ctx context.Context, ids []int64) error
}

// Transactions is the repository of the transactions and their
// category catalogue.
type Transactions = Repo[TransactionsQueryer]

// TransactionsQueryer upserts transactions keyed by their external
// ids and categories keyed by (park, external id).
type TransactionsQueryer interface {
	Upsert(ctx context.Context, txs []model.Transaction) (int64, error)
	UpsertCategories(ctx context.Context, cs []model.TransactionCategory) (int64, error)
}

// Watermarks is the repository of the backfill watermarks.
type Watermarks = Repo[WatermarksQueryer]

// WatermarksQueryer persists one watermark per backfill job.
type WatermarksQueryer interface {
	// Get returns the watermark of job or ErrNotFound.
	Get(ctx context.Context, job string) (*model.Watermark, error)

	// Advance moves the watermark of job to d. A watermark which is
	// already at or after d is left unchanged, so it never moves back.
	Advance(ctx context.Context, job string, d model.Date, now time.Time) error
}

// Runs is the repository of the sync run audit records.
type Runs = Repo[RunsQueryer]

// RunsQueryer stores and lists the sync runs.
type RunsQueryer interface {
	Create(ctx context.Context, r *model.SyncRun) error

	// Recent returns the last limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]model.SyncRun, error)
}
