// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncuc_test

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/model"
)

// fakeAPI serves canned pages per park external id and records the
// requests which need to be asserted.
type fakeAPI struct {
	mu sync.Mutex

	workRules    map[string][]fleet.WorkRuleRecord
	cars         map[string][][]fleet.CarRecord
	drivers      map[string][][]fleet.DriverProfile
	orders       map[string][][]fleet.OrderRecord
	transactions map[string][]fleet.TransactionRecord
	categories   map[string][]fleet.CategoryRecord

	// failOrders may fail the orders request of a park and window.
	failOrders func(park string, w model.Window) error

	orderWindows     map[string][]model.Window
	transactionCalls map[string][][]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		workRules:        make(map[string][]fleet.WorkRuleRecord),
		cars:             make(map[string][][]fleet.CarRecord),
		drivers:          make(map[string][][]fleet.DriverProfile),
		orders:           make(map[string][][]fleet.OrderRecord),
		transactions:     make(map[string][]fleet.TransactionRecord),
		categories:       make(map[string][]fleet.CategoryRecord),
		orderWindows:     make(map[string][]model.Window),
		transactionCalls: make(map[string][][]string),
	}
}

// pagerOf serves pages using their indices as cursors.
func pagerOf[T any](pages [][]T) *fleet.Pager[T] {
	return fleet.NewPager(func(_ context.Context, cursor string) ([]T, string, error) {
		if len(pages) == 0 {
			return nil, "", nil
		}
		i := 0
		if cursor != "" {
			i, _ = strconv.Atoi(cursor)
		}
		next := ""
		if i+1 < len(pages) {
			next = strconv.Itoa(i + 1)
		}
		return pages[i], next, nil
	})
}

func (f *fakeAPI) Drivers(c fleet.Credentials) *fleet.Pager[fleet.DriverProfile] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pagerOf(f.drivers[c.ParkID])
}

func (f *fakeAPI) Cars(c fleet.Credentials) *fleet.Pager[fleet.CarRecord] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pagerOf(f.cars[c.ParkID])
}

func (f *fakeAPI) Orders(c fleet.Credentials, w model.Window) *fleet.Pager[fleet.OrderRecord] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderWindows[c.ParkID] = append(f.orderWindows[c.ParkID], w)
	if f.failOrders != nil {
		if err := f.failOrders(c.ParkID, w); err != nil {
			return fleet.NewPager(func(context.Context, string) ([]fleet.OrderRecord, string, error) {
				return nil, "", err
			})
		}
	}
	// only orders which ended in the window are served
	var pages [][]fleet.OrderRecord
	for _, page := range f.orders[c.ParkID] {
		var kept []fleet.OrderRecord
		for _, o := range page {
			if !o.EndedAt.Before(w.From) && !o.EndedAt.After(w.To) {
				kept = append(kept, o)
			}
		}
		pages = append(pages, kept)
	}
	return pagerOf(pages)
}

func (f *fakeAPI) Transactions(c fleet.Credentials, orderIDs []string) *fleet.Pager[fleet.TransactionRecord] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactionCalls[c.ParkID] = append(f.transactionCalls[c.ParkID], orderIDs)
	want := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}
	var page []fleet.TransactionRecord
	for _, t := range f.transactions[c.ParkID] {
		if want[t.OrderID] || t.OrderID == "" {
			page = append(page, t)
		}
	}
	return pagerOf([][]fleet.TransactionRecord{page})
}

func (f *fakeAPI) WorkRules(_ context.Context, c fleet.Credentials) ([]fleet.WorkRuleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.workRules[c.ParkID], nil
}

func (f *fakeAPI) Categories(_ context.Context, c fleet.Credentials) ([]fleet.CategoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories[c.ParkID], nil
}

func (f *fakeAPI) ParkInfo(context.Context, fleet.Credentials) (*fleet.ParkInfo, error) {
	return nil, errors.New("not used")
}

func (f *fakeAPI) IssuePayment(context.Context, fleet.Credentials, model.Payment) (*model.PaymentResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeAPI) PaymentStatus(context.Context, fleet.Credentials, string) (*model.PaymentResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeAPI) windows(park string) []model.Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Window(nil), f.orderWindows[park]...)
}
