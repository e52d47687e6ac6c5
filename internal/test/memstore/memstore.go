// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memstore is an in-memory implementation of the repo
// interfaces for the use case tests. Its upserts follow the same
// conflict rules as the PostgreSQL repositories: rows are keyed by
// their natural keys, a conflicting row keeps its local ID and gets
// its other fields overwritten, and the orders keep their
// transactions_ingested flag.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

type parkKey struct {
	parkID int64
	ext    string
}

// Store keeps all rows in memory and is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	nextID       int64
	parks        map[string]model.Park
	workRules    map[parkKey]model.WorkRule
	cars         map[parkKey]model.Car
	balances     map[string]model.Balance
	drivers      map[parkKey]model.Driver
	orders       map[string]model.Order
	transactions map[string]model.Transaction
	categories   map[parkKey]model.TransactionCategory
	watermarks   map[string]model.Watermark
	runs         []model.SyncRun

	// FailUpsert, if set, is called before each upsert with the table
	// name and the park ID of the first row (zero for balances). A
	// non-nil return value fails the upsert.
	FailUpsert func(table string, parkID int64) error

	// Upserts counts the upsert calls per table.
	Upserts map[string]int
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		parks:        make(map[string]model.Park),
		workRules:    make(map[parkKey]model.WorkRule),
		cars:         make(map[parkKey]model.Car),
		balances:     make(map[string]model.Balance),
		drivers:      make(map[parkKey]model.Driver),
		orders:       make(map[string]model.Order),
		transactions: make(map[string]model.Transaction),
		categories:   make(map[parkKey]model.TransactionCategory),
		watermarks:   make(map[string]model.Watermark),
		Upserts:      make(map[string]int),
	}
}

// Pool returns a repo.Pool whose connections run nothing by themselves.
func (s *Store) Pool() repo.Pool {
	return pool{}
}

// Repos returns all repositories backed by s.
func (s *Store) Repos() repo.Repos {
	return repo.Repos{
		Parks:        repoOf[repo.ParksQueryer]{parks{s}},
		WorkRules:    repoOf[repo.WorkRulesQueryer]{workRules{s}},
		Cars:         repoOf[repo.CarsQueryer]{cars{s}},
		Balances:     repoOf[repo.BalancesQueryer]{balances{s}},
		Drivers:      repoOf[repo.DriversQueryer]{drivers{s}},
		Orders:       repoOf[repo.OrdersQueryer]{orders{s}},
		Transactions: repoOf[repo.TransactionsQueryer]{transactions{s}},
		Watermarks:   repoOf[repo.WatermarksQueryer]{watermarks{s}},
		Runs:         repoOf[repo.RunsQueryer]{runs{s}},
	}
}

// AddPark registers p and returns it with its local ID.
func (s *Store) AddPark(p model.Park) model.Park {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.parks[p.ExternalID] = p
	return p
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) fail(table string, parkID int64) error {
	s.Upserts[table]++
	if s.FailUpsert == nil {
		return nil
	}
	return s.FailUpsert(table, parkID)
}

func sortedByID[K comparable, V any](m map[K]V, id func(V) int64) []V {
	vs := make([]V, 0, len(m))
	for _, v := range m {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return id(vs[i]) < id(vs[j]) })
	return vs
}

// WorkRules returns a snapshot of the work rules ordered by ID.
func (s *Store) WorkRules() []model.WorkRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.workRules, func(v model.WorkRule) int64 { return v.ID })
}

// Cars returns a snapshot of the cars ordered by ID.
func (s *Store) Cars() []model.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.cars, func(v model.Car) int64 { return v.ID })
}

// Balances returns a snapshot of the balances ordered by ID.
func (s *Store) Balances() []model.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.balances, func(v model.Balance) int64 { return v.ID })
}

// Drivers returns a snapshot of the drivers ordered by ID.
func (s *Store) Drivers() []model.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.drivers, func(v model.Driver) int64 { return v.ID })
}

// Orders returns a snapshot of the orders ordered by ID.
func (s *Store) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.orders, func(v model.Order) int64 { return v.ID })
}

// Transactions returns a snapshot of the transactions ordered by ID.
func (s *Store) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.transactions, func(v model.Transaction) int64 { return v.ID })
}

// Categories returns a snapshot of the categories ordered by ID.
func (s *Store) Categories() []model.TransactionCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.categories, func(v model.TransactionCategory) int64 { return v.ID })
}

// Runs returns the stored sync runs in their insertion order.
func (s *Store) Runs() []model.SyncRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SyncRun(nil), s.runs...)
}

type pool struct{}

func (pool) Conn(ctx context.Context, handler repo.ConnHandler) error {
	return handler(ctx, conn{})
}

func (pool) Close() error {
	return nil
}

type conn struct{ queryer }

func (conn) Tx(ctx context.Context, handler repo.TxHandler) error {
	return handler(ctx, tx{})
}

func (conn) IsConn() {}

type tx struct{ queryer }

func (tx) IsTx() {}

// queryer rejects raw SQL since no repository of this package needs it.
type queryer struct{}

func (queryer) Exec(context.Context, string, ...any) (int64, error) {
	panic("memstore: raw SQL is not supported")
}

func (queryer) Query(context.Context, string, ...any) (repo.Rows, error) {
	panic("memstore: raw SQL is not supported")
}

type repoOf[Q any] struct{ q Q }

func (r repoOf[Q]) Conn(repo.Conn) Q { return r.q }

func (r repoOf[Q]) Tx(repo.Tx) Q { return r.q }
