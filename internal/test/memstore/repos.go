// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

type parks struct{ s *Store }

func (q parks) List(_ context.Context, activeOnly bool) ([]model.Park, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	ps := sortedByID(q.s.parks, func(p model.Park) int64 { return p.ID })
	out := ps[:0]
	for _, p := range ps {
		if p.IsActive || !activeOnly {
			out = append(out, p)
		}
	}
	return out, nil
}

func (q parks) ByExternalID(_ context.Context, ext string) (*model.Park, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	p, ok := q.s.parks[ext]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (q parks) Create(_ context.Context, p *model.Park) (*model.Park, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if _, ok := q.s.parks[p.ExternalID]; ok {
		return nil, fmt.Errorf("park %q already exists", p.ExternalID)
	}
	pp := *p
	pp.ID = q.s.id()
	q.s.parks[pp.ExternalID] = pp
	return &pp, nil
}

func (q parks) Update(_ context.Context, p *model.Park) (*model.Park, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	old, ok := q.s.parks[p.ExternalID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	pp := *p
	pp.ID = old.ID
	q.s.parks[pp.ExternalID] = pp
	return &pp, nil
}

// upsert stores each row under its key, keeping the ID of an existing
// row and assigning a fresh ID to a new one. The merge function can
// keep fields of the existing row which are not refreshed on conflict.
func upsert[K comparable, V any](
	m map[K]V,
	rows []V,
	key func(V) K,
	setID func(*V, *V),
) int64 {
	for _, r := range rows {
		k := key(r)
		if old, ok := m[k]; ok {
			setID(&r, &old)
		} else {
			setID(&r, nil)
		}
		m[k] = r
	}
	return int64(len(rows))
}

func parkOf[V any](rows []V, f func(V) int64) int64 {
	if len(rows) == 0 {
		return 0
	}
	return f(rows[0])
}

type workRules struct{ s *Store }

func (q workRules) Upsert(_ context.Context, rows []model.WorkRule) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if err := q.s.fail("work_rules", parkOf(rows, func(v model.WorkRule) int64 { return v.ParkID })); err != nil {
		return 0, err
	}
	return upsert(q.s.workRules, rows,
		func(v model.WorkRule) parkKey { return parkKey{v.ParkID, v.ExternalID} },
		func(v, old *model.WorkRule) {
			if old != nil {
				v.ID = old.ID
			} else {
				v.ID = q.s.id()
			}
		}), nil
}

func (q workRules) IDs(_ context.Context, parkID int64, exts []string) (map[string]int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	return ids(q.s.workRules, exts, func(e string) parkKey { return parkKey{parkID, e} },
		func(v model.WorkRule) int64 { return v.ID }), nil
}

func ids[K comparable, V any](
	m map[K]V, exts []string, key func(string) K, id func(V) int64,
) map[string]int64 {
	out := make(map[string]int64)
	for _, e := range exts {
		if v, ok := m[key(e)]; ok {
			out[e] = id(v)
		}
	}
	return out
}

type cars struct{ s *Store }

func (q cars) Upsert(_ context.Context, rows []model.Car) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if err := q.s.fail("cars", parkOf(rows, func(v model.Car) int64 { return v.ParkID })); err != nil {
		return 0, err
	}
	return upsert(q.s.cars, rows,
		func(v model.Car) parkKey { return parkKey{v.ParkID, v.ExternalID} },
		func(v, old *model.Car) {
			if old != nil {
				v.ID = old.ID
			} else {
				v.ID = q.s.id()
			}
		}), nil
}

func (q cars) IDs(_ context.Context, parkID int64, exts []string) (map[string]int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	return ids(q.s.cars, exts, func(e string) parkKey { return parkKey{parkID, e} },
		func(v model.Car) int64 { return v.ID }), nil
}

func (q cars) List(_ context.Context, parkID int64) ([]model.Car, error) {
	var out []model.Car
	for _, c := range q.s.Cars() {
		if c.ParkID == parkID {
			out = append(out, c)
		}
	}
	return out, nil
}

type balances struct{ s *Store }

func (q balances) Upsert(_ context.Context, rows []model.Balance) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if err := q.s.fail("balances", 0); err != nil {
		return 0, err
	}
	return upsert(q.s.balances, rows,
		func(v model.Balance) string { return v.ExternalID },
		func(v, old *model.Balance) {
			if old != nil {
				v.ID = old.ID
			} else {
				v.ID = q.s.id()
			}
		}), nil
}

func (q balances) IDs(_ context.Context, exts []string) (map[string]int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	return ids(q.s.balances, exts, func(e string) string { return e },
		func(v model.Balance) int64 { return v.ID }), nil
}

type drivers struct{ s *Store }

func (q drivers) Upsert(_ context.Context, rows []model.Driver) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if err := q.s.fail("drivers", parkOf(rows, func(v model.Driver) int64 { return v.ParkID })); err != nil {
		return 0, err
	}
	return upsert(q.s.drivers, rows,
		func(v model.Driver) parkKey { return parkKey{v.ParkID, v.ExternalID} },
		func(v, old *model.Driver) {
			if old != nil {
				v.ID = old.ID
			} else {
				v.ID = q.s.id()
			}
		}), nil
}

func (q drivers) IDs(_ context.Context, parkID int64, exts []string) (map[string]int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	return ids(q.s.drivers, exts, func(e string) parkKey { return parkKey{parkID, e} },
		func(v model.Driver) int64 { return v.ID }), nil
}

func (q drivers) List(_ context.Context, parkID int64) ([]model.Driver, error) {
	var out []model.Driver
	for _, d := range q.s.Drivers() {
		if d.ParkID == parkID {
			out = append(out, d)
		}
	}
	return out, nil
}

type orders struct{ s *Store }

func (q orders) Upsert(_ context.Context, rows []model.Order) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if err := q.s.fail("orders", parkOf(rows, func(v model.Order) int64 { return v.ParkID })); err != nil {
		return 0, err
	}
	return upsert(q.s.orders, rows,
		func(v model.Order) string { return v.ExternalID },
		func(v, old *model.Order) {
			if old != nil {
				v.ID = old.ID
				v.TransactionsIngested = old.TransactionsIngested
			} else {
				v.ID = q.s.id()
				v.TransactionsIngested = false
			}
		}), nil
}

func (q orders) IDs(_ context.Context, parkID int64, exts []string) (map[string]int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	out := make(map[string]int64)
	for _, e := range exts {
		if o, ok := q.s.orders[e]; ok && o.ParkID == parkID {
			out[e] = o.ID
		}
	}
	return out, nil
}

func (q orders) Pending(_ context.Context, parkID, afterID int64, limit int) ([]model.Order, error) {
	var out []model.Order
	for _, o := range q.s.Orders() {
		if o.ParkID == parkID && o.ID > afterID && !o.TransactionsIngested && len(out) < limit {
			out = append(out, o)
		}
	}
	return out, nil
}

func (q orders) MarkTransactionsIngested(_ context.Context, ids []int64) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for k, o := range q.s.orders {
		if set[o.ID] {
			o.TransactionsIngested = true
			q.s.orders[k] = o
		}
	}
	return nil
}

type transactions struct{ s *Store }

func (q transactions) Upsert(_ context.Context, rows []model.Transaction) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if err := q.s.fail("transactions", parkOf(rows, func(v model.Transaction) int64 { return v.ParkID })); err != nil {
		return 0, err
	}
	return upsert(q.s.transactions, rows,
		func(v model.Transaction) string { return v.ExternalID },
		func(v, old *model.Transaction) {
			if old != nil {
				v.ID = old.ID
			} else {
				v.ID = q.s.id()
			}
		}), nil
}

func (q transactions) UpsertCategories(_ context.Context, rows []model.TransactionCategory) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if err := q.s.fail("transaction_categories", parkOf(rows, func(v model.TransactionCategory) int64 { return v.ParkID })); err != nil {
		return 0, err
	}
	return upsert(q.s.categories, rows,
		func(v model.TransactionCategory) parkKey { return parkKey{v.ParkID, v.ExternalID} },
		func(v, old *model.TransactionCategory) {
			if old != nil {
				v.ID = old.ID
			} else {
				v.ID = q.s.id()
			}
		}), nil
}

type watermarks struct{ s *Store }

func (q watermarks) Get(_ context.Context, job string) (*model.Watermark, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	w, ok := q.s.watermarks[job]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &w, nil
}

func (q watermarks) Advance(_ context.Context, job string, d model.Date, now time.Time) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	if w, ok := q.s.watermarks[job]; ok && !w.Date.Before(d) {
		return nil
	}
	q.s.watermarks[job] = model.Watermark{Job: job, Date: d, UpdatedAt: now}
	return nil
}

type runs struct{ s *Store }

func (q runs) Create(ctx context.Context, r *model.SyncRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	r.ID = q.s.id()
	q.s.runs = append(q.s.runs, *r)
	return nil
}

func (q runs) Recent(_ context.Context, limit int) ([]model.SyncRun, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	rs := append([]model.SyncRun(nil), q.s.runs...)
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID > rs[j].ID })
	if len(rs) > limit {
		rs = rs[:limit]
	}
	return rs, nil
}
