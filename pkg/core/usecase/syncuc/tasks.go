// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncuc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

func (uc *UseCase) syncWorkRules(
	ctx context.Context, p *model.Park, pr *model.ParkResult,
) error {
	recs, err := uc.api.WorkRules(ctx, fleet.CredentialsOf(p))
	if err != nil {
		return fmt.Errorf("fetching work rules: %w", err)
	}
	rules := workRulesOf(p.ID, recs)
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		n, err := uc.repos.WorkRules.Conn(c).Upsert(ctx, rules)
		if err != nil {
			return fmt.Errorf("upserting %d work rules: %w", len(rules), err)
		}
		pr.Upserted += int(n)
		return nil
	})
}

func (uc *UseCase) syncCars(
	ctx context.Context, p *model.Park, pr *model.ParkResult,
) error {
	pager := uc.api.Cars(fleet.CredentialsOf(p))
	return eachPage(ctx, pager, func(ctx context.Context, page []fleet.CarRecord) error {
		cars := carsOf(p.ID, page)
		return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
			n, err := uc.repos.Cars.Conn(c).Upsert(ctx, cars)
			if err != nil {
				return fmt.Errorf("upserting %d cars: %w", len(cars), err)
			}
			pr.Upserted += int(n)
			return nil
		})
	})
}

// syncDrivers upserts the balances of each page before its drivers,
// in one transaction, so the drivers can reference the balances.
func (uc *UseCase) syncDrivers(
	ctx context.Context, p *model.Park, pr *model.ParkResult,
) error {
	pager := uc.api.Drivers(fleet.CredentialsOf(p))
	return eachPage(ctx, pager, func(ctx context.Context, page []fleet.DriverProfile) error {
		return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
			return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
				return uc.upsertDrivers(ctx, tx, p, page, pr)
			})
		})
	})
}

func (uc *UseCase) upsertDrivers(
	ctx context.Context,
	tx repo.Tx,
	p *model.Park,
	page []fleet.DriverProfile,
	pr *model.ParkResult,
) error {
	balancesQ := uc.repos.Balances.Tx(tx)
	bs := balancesOf(page)
	n, err := balancesQ.Upsert(ctx, bs)
	if err != nil {
		return fmt.Errorf("upserting %d balances: %w", len(bs), err)
	}
	pr.Upserted += int(n)
	balances, err := lookup(ctx, collectIDs(bs, func(b *model.Balance) string {
		return b.ExternalID
	}), balancesQ.IDs)
	if err != nil {
		return fmt.Errorf("balances: %w", err)
	}
	rulesQ := uc.repos.WorkRules.Tx(tx)
	rules, err := lookup(ctx, collectIDs(page, func(d *fleet.DriverProfile) string {
		return d.Profile.WorkRuleID
	}), func(ctx context.Context, ids []string) (map[string]int64, error) {
		return rulesQ.IDs(ctx, p.ID, ids)
	})
	if err != nil {
		return fmt.Errorf("work rules: %w", err)
	}
	ds := driversOf(p.ID, page, rules, balances)
	n, err = uc.repos.Drivers.Tx(tx).Upsert(ctx, ds)
	if err != nil {
		return fmt.Errorf("upserting %d drivers: %w", len(ds), err)
	}
	pr.Upserted += int(n)
	return nil
}

// syncOrders fetches the orders which ended in w, or in the default
// trailing window if w is nil. The window is anchored to the park
// time zone before it is sent to the fleet API.
func (uc *UseCase) syncOrders(
	ctx context.Context, p *model.Park, w *model.Window, pr *model.ParkResult,
) error {
	loc, err := uc.location(p)
	if err != nil {
		return err
	}
	var win model.Window
	if w == nil {
		win = model.TrailingWindow(uc.now(), uc.trailing, loc)
	} else {
		win = w.Anchor(loc)
	}
	log.Debug(ctx, "fetching orders", log.Park(p.ExternalID), log.Window(win.From, win.To))
	pager := uc.api.Orders(fleet.CredentialsOf(p), win)
	return eachPage(ctx, pager, func(ctx context.Context, page []fleet.OrderRecord) error {
		return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
			return uc.upsertOrders(ctx, c, p, page, pr)
		})
	})
}

func (uc *UseCase) upsertOrders(
	ctx context.Context,
	c repo.Conn,
	p *model.Park,
	page []fleet.OrderRecord,
	pr *model.ParkResult,
) error {
	driversQ := uc.repos.Drivers.Conn(c)
	drivers, err := lookup(ctx, collectIDs(page, func(o *fleet.OrderRecord) string {
		return o.Driver.ID
	}), func(ctx context.Context, ids []string) (map[string]int64, error) {
		return driversQ.IDs(ctx, p.ID, ids)
	})
	if err != nil {
		return fmt.Errorf("drivers: %w", err)
	}
	carsQ := uc.repos.Cars.Conn(c)
	cars, err := lookup(ctx, collectIDs(page, func(o *fleet.OrderRecord) string {
		if o.Car == nil {
			return ""
		}
		return o.Car.ID
	}), func(ctx context.Context, ids []string) (map[string]int64, error) {
		return carsQ.IDs(ctx, p.ID, ids)
	})
	if err != nil {
		return fmt.Errorf("cars: %w", err)
	}
	orders := ordersOf(p.ID, page, drivers, cars, pr)
	n, err := uc.repos.Orders.Conn(c).Upsert(ctx, orders)
	if err != nil {
		return fmt.Errorf("upserting %d orders: %w", len(orders), err)
	}
	pr.Upserted += int(n)
	return nil
}

// syncTransactions fetches the transactions of the orders whose
// transactions are not ingested yet, batch by batch. Orders of a batch
// are marked as ingested after all pages of their transactions are
// persisted, so an interrupted run refetches them on its next run.
// Orders with a transaction of an unknown driver stay pending too, and
// batches are taken after the last order of the previous batch, so a
// run visits each pending order once.
func (uc *UseCase) syncTransactions(
	ctx context.Context, p *model.Park, pr *model.ParkResult,
) error {
	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var pending []model.Order
		err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) (err error) {
			pending, err = uc.repos.Orders.Conn(c).Pending(ctx, p.ID, afterID, uc.batchSize)
			return err
		})
		if err != nil {
			return fmt.Errorf("listing pending orders: %w", err)
		}
		if len(pending) == 0 {
			return nil
		}
		if err := uc.ingestTransactions(ctx, p, pending, pr); err != nil {
			return err
		}
		afterID = pending[len(pending)-1].ID
		if len(pending) < uc.batchSize {
			return nil
		}
	}
}

func (uc *UseCase) ingestTransactions(
	ctx context.Context, p *model.Park, pending []model.Order, pr *model.ParkResult,
) error {
	orders := make(map[string]int64, len(pending))
	extIDs := make([]string, 0, len(pending))
	for _, o := range pending {
		orders[o.ExternalID] = o.ID
		extIDs = append(extIDs, o.ExternalID)
	}
	held := make(map[int64]bool)
	pager := uc.api.Transactions(fleet.CredentialsOf(p), extIDs)
	err := eachPage(ctx, pager, func(ctx context.Context, page []fleet.TransactionRecord) error {
		return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
			driversQ := uc.repos.Drivers.Conn(c)
			drivers, err := lookup(ctx, collectIDs(page, func(t *fleet.TransactionRecord) string {
				return t.DriverProfileID
			}), func(ctx context.Context, chunk []string) (map[string]int64, error) {
				return driversQ.IDs(ctx, p.ID, chunk)
			})
			if err != nil {
				return fmt.Errorf("drivers: %w", err)
			}
			txs := transactionsOf(p.ID, page, drivers, orders, held, pr)
			n, err := uc.repos.Transactions.Conn(c).Upsert(ctx, txs)
			if err != nil {
				return fmt.Errorf("upserting %d transactions: %w", len(txs), err)
			}
			pr.Upserted += int(n)
			return nil
		})
	})
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(pending))
	for _, o := range pending {
		if !held[o.ID] {
			ids = append(ids, o.ID)
		}
	}
	if len(held) > 0 {
		log.Warn(
			ctx, "orders are kept pending for their unknown drivers",
			log.Park(p.ExternalID), slog.Int("orders", len(held)),
		)
	}
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		err := uc.repos.Orders.Conn(c).MarkTransactionsIngested(ctx, ids)
		if err != nil {
			return fmt.Errorf("marking %d orders as ingested: %w", len(ids), err)
		}
		return nil
	})
}

func (uc *UseCase) syncCategories(
	ctx context.Context, p *model.Park, pr *model.ParkResult,
) error {
	recs, err := uc.api.Categories(ctx, fleet.CredentialsOf(p))
	if err != nil {
		return fmt.Errorf("fetching transaction categories: %w", err)
	}
	cs := categoriesOf(p.ID, recs)
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		n, err := uc.repos.Transactions.Conn(c).UpsertCategories(ctx, cs)
		if err != nil {
			return fmt.Errorf("upserting %d categories: %w", len(cs), err)
		}
		pr.Upserted += int(n)
		return nil
	})
}

// eachPage fetches the pages of pager one by one and passes each page
// to f before the next one is fetched. Empty pages are not passed.
func eachPage[T any](
	ctx context.Context,
	pager *fleet.Pager[T],
	f func(context.Context, []T) error,
) error {
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", pager.Pages()+1, err)
		}
		if len(page) == 0 {
			continue
		}
		if err := f(ctx, page); err != nil {
			return fmt.Errorf("page %d: %w", pager.Pages(), err)
		}
	}
	return nil
}
