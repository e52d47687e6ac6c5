// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/momeni/fleetsync/internal/test/dbcontainer"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/balancesrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/carsrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/driversrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/ordersrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/parksrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/runsrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/transactionsrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/watermarksrp"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/workrulesrp"
	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type ReposTestSuite struct {
	Ctx  context.Context
	Pool *postgres.Pool
}

func TestReposTestSuite(t *testing.T) {
	ctx := context.Background()
	pool, dfrs, ok := dbcontainer.NewWithTables(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	rts := &ReposTestSuite{Ctx: ctx, Pool: pool}
	t.Run("parks", rts.TestParks)
	t.Run("idempotent resync", rts.TestIdempotentResync)
	t.Run("orders and transactions", rts.TestOrdersAndTransactions)
	t.Run("watermarks", rts.TestWatermarks)
	t.Run("runs", rts.TestRuns)
}

// conn runs f with a connection and fails t if f returns an error.
func (rts *ReposTestSuite) conn(t *testing.T, f repo.ConnHandler) {
	require.NoError(t, rts.Pool.Conn(rts.Ctx, f))
}

func (rts *ReposTestSuite) park(t *testing.T, c repo.Conn, ext string) *model.Park {
	p, err := parksrp.New().Conn(c).Create(rts.Ctx, &model.Park{
		ExternalID: ext,
		ClientID:   "taxi/park/" + ext,
		APIKey:     "key",
		City:       "Moscow",
		IsActive:   true,
	})
	require.NoError(t, err)
	return p
}

func (rts *ReposTestSuite) TestParks(t *testing.T) {
	rts.conn(t, func(ctx context.Context, c repo.Conn) error {
		r := require.New(t)
		q := parksrp.New().Conn(c)
		p := rts.park(t, c, "p-parks")
		r.NotZero(p.ID)

		_, err := q.Create(ctx, p)
		var ce *cerr.Error
		r.True(errors.As(err, &ce), "duplicate park: %v", err)
		r.Equal(http.StatusConflict, ce.HTTPStatusCode)

		p.Name, p.IsActive = "Renamed", false
		up, err := q.Update(ctx, p)
		r.NoError(err)
		r.Equal(p.ID, up.ID)
		r.Equal("Renamed", up.Name)

		got, err := q.ByExternalID(ctx, "p-parks")
		r.NoError(err)
		r.Equal(*up, *got)

		active, err := q.List(ctx, true)
		r.NoError(err)
		for _, a := range active {
			r.NotEqual("p-parks", a.ExternalID)
		}
		all, err := q.List(ctx, false)
		r.NoError(err)
		r.NotEmpty(all)

		_, err = q.ByExternalID(ctx, "missing")
		r.ErrorIs(err, repo.ErrNotFound)
		_, err = q.Update(ctx, &model.Park{ExternalID: "missing"})
		r.ErrorIs(err, repo.ErrNotFound)
		return nil
	})
}

func (rts *ReposTestSuite) TestIdempotentResync(t *testing.T) {
	rts.conn(t, func(ctx context.Context, c repo.Conn) error {
		r := require.New(t)
		p := rts.park(t, c, "p-resync")

		wq := workrulesrp.New().Conn(c)
		rules := []model.WorkRule{{ParkID: p.ID, ExternalID: "wr1", Name: "Day", IsEnabled: true}}
		for i := 0; i < 2; i++ {
			n, err := wq.Upsert(ctx, rules)
			r.NoError(err)
			r.EqualValues(1, n)
		}
		wrIDs, err := wq.IDs(ctx, p.ID, []string{"wr1", "unknown"})
		r.NoError(err)
		r.Len(wrIDs, 1)
		wrID := wrIDs["wr1"]

		bq := balancesrp.New().Conn(c)
		_, err = bq.Upsert(ctx, []model.Balance{{
			ExternalID: "acc1", Balance: decimal.RequireFromString("10.50"),
			BalanceLimit: decimal.Zero, Currency: "RUB", Type: "current",
		}})
		r.NoError(err)
		bIDs, err := bq.IDs(ctx, []string{"acc1"})
		r.NoError(err)
		bID := bIDs["acc1"]

		dq := driversrp.New().Conn(c)
		d := model.Driver{
			ParkID: p.ID, ExternalID: "d1", FirstName: "Ivan",
			WorkStatus: "working", WorkRuleID: &wrID, BalanceID: &bID,
			License: model.DriverLicense{
				Number: "77AA", Country: "rus",
				IssueDate: model.Date{Year: 2020, Month: time.May, Day: 4},
			},
		}
		_, err = dq.Upsert(ctx, []model.Driver{d})
		r.NoError(err)
		first, err := dq.List(ctx, p.ID)
		r.NoError(err)
		r.Len(first, 1)
		r.Equal(bID, *first[0].BalanceID)
		r.Equal(d.License, first[0].License)
		r.True(first[0].CreatedAt.IsZero())

		// The license and balance are gone from the fleet API now.
		d.License, d.BalanceID, d.FirstName = model.DriverLicense{}, nil, "Ivan II"
		_, err = dq.Upsert(ctx, []model.Driver{d})
		r.NoError(err)
		second, err := dq.List(ctx, p.ID)
		r.NoError(err)
		r.Len(second, 1)
		r.Equal(first[0].ID, second[0].ID)
		r.Nil(second[0].BalanceID)
		r.Equal(model.DriverLicense{}, second[0].License)
		r.Equal("Ivan II", second[0].FirstName)

		cq := carsrp.New().Conn(c)
		car := model.Car{
			ParkID: p.ID, ExternalID: "c1", Brand: "Kia", Model: "Rio",
			Year: 2021, Amenities: []string{"wifi", "child_seat"},
		}
		_, err = cq.Upsert(ctx, []model.Car{car})
		r.NoError(err)
		car.Amenities = []string{"wifi"}
		_, err = cq.Upsert(ctx, []model.Car{car})
		r.NoError(err)
		cars, err := cq.List(ctx, p.ID)
		r.NoError(err)
		r.Len(cars, 1)
		r.Equal([]string{"wifi"}, cars[0].Amenities)
		r.Equal([]string{}, cars[0].Categories)
		r.Equal("Rio", cars[0].Model)
		return nil
	})
}

func (rts *ReposTestSuite) TestOrdersAndTransactions(t *testing.T) {
	rts.conn(t, func(ctx context.Context, c repo.Conn) error {
		r := require.New(t)
		p := rts.park(t, c, "p-orders")
		dq := driversrp.New().Conn(c)
		_, err := dq.Upsert(ctx, []model.Driver{{ParkID: p.ID, ExternalID: "d1"}})
		r.NoError(err)
		dIDs, err := dq.IDs(ctx, p.ID, []string{"d1"})
		r.NoError(err)

		msk := time.FixedZone("MSK", 3*3600)
		ended := time.Date(2024, time.March, 1, 10, 0, 0, 0, msk)
		o := model.Order{
			ParkID: p.ID, DriverID: dIDs["d1"], ExternalID: "o1",
			ShortID: 42, Status: "complete", Price: decimal.RequireFromString("350.5"),
			EndedAt: ended,
			AddressFrom: model.Address{
				Text: "Tverskaya 1", Coordinate: model.Coordinate{Lat: 55.7, Lon: 37.6},
			},
			RoutePoints: []model.Address{{Text: "Arbat 2"}},
		}
		oq := ordersrp.New().Conn(c)
		_, err = oq.Upsert(ctx, []model.Order{o})
		r.NoError(err)

		pending, err := oq.Pending(ctx, p.ID, 0, 10)
		r.NoError(err)
		r.Len(pending, 1)
		got := pending[0]
		r.Nil(got.CarID)
		r.True(o.Price.Equal(got.Price))
		r.True(ended.Equal(got.EndedAt))
		r.True(got.BookedAt.IsZero())
		r.Equal(o.AddressFrom, got.AddressFrom)
		r.Equal(o.RoutePoints, got.RoutePoints)

		r.NoError(oq.MarkTransactionsIngested(ctx, []int64{got.ID}))
		_, err = oq.Upsert(ctx, []model.Order{o})
		r.NoError(err)
		pending, err = oq.Pending(ctx, p.ID, 0, 10)
		r.NoError(err)
		r.Empty(pending, "a resync must keep the ingested flag")

		o2 := o
		o2.ExternalID = "o2"
		_, err = oq.Upsert(ctx, []model.Order{o2})
		r.NoError(err)
		pending, err = oq.Pending(ctx, p.ID, 0, 10)
		r.NoError(err)
		r.Len(pending, 1)
		after, err := oq.Pending(ctx, p.ID, pending[0].ID, 10)
		r.NoError(err)
		r.Empty(after, "orders up to afterID are excluded")

		tq := transactionsrp.New().Conn(c)
		tx := model.Transaction{
			ParkID: p.ID, DriverID: dIDs["d1"], OrderID: got.ID,
			ExternalID: "t1", Amount: decimal.RequireFromString("100"),
			Currency: "RUB", CategoryID: "card",
		}
		_, err = tq.Upsert(ctx, []model.Transaction{tx})
		r.NoError(err)
		tx.Amount = decimal.RequireFromString("120")
		n, err := tq.Upsert(ctx, []model.Transaction{tx})
		r.NoError(err)
		r.EqualValues(1, n)
		var amount decimal.Decimal
		rows, err := c.Query(ctx, "SELECT amount FROM transactions WHERE external_id = ?", "t1")
		r.NoError(err)
		defer rows.Close()
		r.True(rows.Next())
		r.NoError(rows.Scan(&amount))
		r.True(amount.Equal(tx.Amount), "amount is overwritten: %v", amount)

		cats := []model.TransactionCategory{{
			ParkID: p.ID, ExternalID: "card", Name: "Card", IsEnabled: true,
		}}
		n, err = tq.UpsertCategories(ctx, cats)
		r.NoError(err)
		r.EqualValues(1, n)
		return nil
	})
}

func (rts *ReposTestSuite) TestWatermarks(t *testing.T) {
	rts.conn(t, func(ctx context.Context, c repo.Conn) error {
		r := require.New(t)
		q := watermarksrp.New().Conn(c)
		_, err := q.Get(ctx, "orders-backfill")
		r.ErrorIs(err, repo.ErrNotFound)

		now := time.Now()
		d := model.Date{Year: 2024, Month: time.January, Day: 3}
		r.NoError(q.Advance(ctx, "orders-backfill", d, now))
		r.NoError(q.Advance(ctx, "orders-backfill", d.AddDays(-2), now))
		w, err := q.Get(ctx, "orders-backfill")
		r.NoError(err)
		r.Equal(d, w.Date, "watermark must not move back")

		r.NoError(q.Advance(ctx, "orders-backfill", d.AddDays(1), now))
		w, err = q.Get(ctx, "orders-backfill")
		r.NoError(err)
		r.Equal(d.AddDays(1), w.Date)
		return nil
	})
}

func (rts *ReposTestSuite) TestRuns(t *testing.T) {
	rts.conn(t, func(ctx context.Context, c repo.Conn) error {
		r := require.New(t)
		q := runsrp.New().Conn(c)
		start := time.Now().Add(-time.Minute)
		for _, task := range []model.Task{model.TaskCars, model.TaskOrders} {
			run := &model.SyncRun{
				Task: task, StartedAt: start, FinishedAt: start.Add(time.Second),
				Status: model.RunSucceeded, Parks: 2, Upserted: 10,
			}
			r.NoError(q.Create(ctx, run))
			r.NotZero(run.ID)
		}
		r.Error(q.Create(ctx, &model.SyncRun{}))
		rs, err := q.Recent(ctx, 1)
		r.NoError(err)
		r.Len(rs, 1)
		r.Equal(model.TaskOrders, rs[0].Task)
		r.Equal(10, rs[0].Upserted)
		return nil
	})
}
