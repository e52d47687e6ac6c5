// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncuc_test

import (
	"errors"
	"time"

	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/model"
)

func day(d int) model.Date {
	return model.Date{Year: 2024, Month: time.February, Day: d}
}

// processedDays returns the days whose orders were requested for p1,
// in the order of the requests.
func (ss *SyncSuite) processedDays() []model.Date {
	var days []model.Date
	for _, w := range ss.api.windows("p1") {
		days = append(days, model.DateOf(w.From))
	}
	return days
}

func (ss *SyncSuite) TestBackfillResumesAtFailedDay() {
	failing := true
	ss.api.failOrders = func(_ string, w model.Window) error {
		if failing && model.DateOf(w.From) == day(3) {
			return errors.New("day 3 is broken")
		}
		return nil
	}
	status, err := ss.uc.Backfill(ss.ctx, "orders", day(1), day(5))
	ss.Require().Error(err)
	ss.Contains(err.Error(), "2024-02-03")
	ss.Equal(model.BackfillInProgress, status.State)
	ss.Equal(day(2), status.Watermark)
	ss.Equal(day(3), status.Next)
	ss.Equal([]model.Date{day(1), day(2), day(3)}, ss.processedDays())

	failing = false
	ss.api.orderWindows = map[string][]model.Window{}
	status, err = ss.uc.Backfill(ss.ctx, "orders", day(1), day(5))
	ss.Require().NoError(err)
	ss.Equal([]model.Date{day(3), day(4), day(5)}, ss.processedDays())
	ss.Equal(model.BackfillCompleted, status.State)
	ss.Equal(day(5), status.Watermark)

	status, err = ss.uc.BackfillStatus(ss.ctx, "orders", day(5))
	ss.Require().NoError(err)
	ss.Equal(model.BackfillCompleted, status.State)
}

func (ss *SyncSuite) TestBackfillDayCoversParkZone() {
	_, err := ss.uc.Backfill(ss.ctx, "orders", day(7), day(7))
	ss.Require().NoError(err)
	ws := ss.api.windows("p1")
	ss.Require().Len(ws, 1)
	ss.Equal("2024-02-07T00:00:00+05:00", ws[0].From.Format(time.RFC3339))
	ss.Equal("2024-02-07T23:59:59+05:00", ws[0].To.Format(time.RFC3339))
}

func (ss *SyncSuite) TestBackfillIngestsTransactionsPerDay() {
	ss.seedOrders(ss.now.Add(-time.Hour))
	ended := time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC)
	ss.api.orders["p1"] = [][]fleet.OrderRecord{{order("o1", "d1", "", ended)}}
	_, err := ss.uc.Backfill(ss.ctx, "orders", day(1), day(2))
	ss.Require().NoError(err)
	orders := ss.store.Orders()
	ss.Require().Len(orders, 1)
	ss.True(orders[0].TransactionsIngested)
	ss.Len(ss.api.transactionCalls["p1"], 1)
}

func (ss *SyncSuite) TestBackfillAnyParkFailureHaltsTheDay() {
	ss.store.AddPark(newPark("p2", ""))
	ss.api.failOrders = func(park string, _ model.Window) error {
		if park == "p2" {
			return errors.New("p2 is down")
		}
		return nil
	}
	status, err := ss.uc.Backfill(ss.ctx, "orders", day(1), day(3))
	ss.Require().Error(err)
	ss.Equal(model.BackfillNotStarted, status.State)
	ss.Len(ss.processedDays(), 1)
}

func (ss *SyncSuite) TestBackfillValidatesRange() {
	_, err := ss.uc.Backfill(ss.ctx, "orders", day(5), day(1))
	ss.Error(err)
	_, err = ss.uc.Backfill(ss.ctx, "", day(1), day(1))
	ss.Error(err)
}
