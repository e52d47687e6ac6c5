// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fleetapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/model"
)

// Paths of the fleet API endpoints.
const (
	PathDrivers      = "/v1/parks/driver-profiles/list"
	PathCars         = "/v1/parks/cars/list"
	PathWorkRules    = "/v1/parks/driver-work-rules"
	PathOrders       = "/v1/parks/orders/list"
	PathTransactions = "/v2/parks/orders/transactions/list"
	PathCategories   = "/v2/parks/transactions/categories/list"
)

// Page sizes of the list endpoints.
const (
	DriversLimit      = 1000
	CarsLimit         = 1000
	OrdersLimit       = 500
	TransactionsLimit = 1000
)

// OrderStatusComplete is the only order status which is synchronized.
const OrderStatusComplete = "complete"

type parkQuery struct {
	Park parkFilter `json:"park"`
}

type parkFilter struct {
	ID    string       `json:"id"`
	Order *orderFilter `json:"order,omitempty"`
}

type orderFilter struct {
	EndedAt  *timeRange `json:"ended_at,omitempty"`
	Statuses []string   `json:"statuses,omitempty"`
	IDs      []string   `json:"ids,omitempty"`
}

type timeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type sortOrder struct {
	Direction string `json:"direction"`
	Field     string `json:"field"`
}

type offsetRequest struct {
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
	Query     parkQuery   `json:"query"`
	SortOrder []sortOrder `json:"sort_order,omitempty"`
}

type cursorRequest struct {
	Limit  int       `json:"limit"`
	Cursor string    `json:"cursor,omitempty"`
	Query  parkQuery `json:"query"`
}

type driversResponse struct {
	DriverProfiles []fleet.DriverProfile `json:"driver_profiles"`
	Parks          []fleet.ParkInfo      `json:"parks"`
	Total          int                   `json:"total"`
}

type carsResponse struct {
	Cars  []fleet.CarRecord `json:"cars"`
	Total int               `json:"total"`
}

type ordersResponse struct {
	Orders []fleet.OrderRecord `json:"orders"`
	Cursor string              `json:"cursor"`
}

type transactionsResponse struct {
	Transactions []fleet.TransactionRecord `json:"transactions"`
	Cursor       string                    `json:"cursor"`
}

type workRulesResponse struct {
	Rules []fleet.WorkRuleRecord `json:"rules"`
}

type categoriesResponse struct {
	Categories []fleet.CategoryRecord `json:"categories"`
}

// offsetPager adapts an offset/total endpoint to the fleet.Pager.
// The decimal offset of the next page is used as its cursor.
func offsetPager[T any](
	fetch func(ctx context.Context, offset int) (page []T, total int, err error),
) *fleet.Pager[T] {
	return fleet.NewPager(func(ctx context.Context, cursor string) ([]T, string, error) {
		offset := 0
		if cursor != "" {
			var err error
			if offset, err = strconv.Atoi(cursor); err != nil {
				return nil, "", fmt.Errorf("invalid offset cursor %q: %w", cursor, err)
			}
		}
		page, total, err := fetch(ctx, offset)
		if err != nil {
			return nil, "", err
		}
		next := offset + len(page)
		if len(page) == 0 || next >= total {
			return page, "", nil
		}
		return page, strconv.Itoa(next), nil
	})
}

// Drivers lists the driver profiles of a park, recently updated
// profiles first.
func (c *Client) Drivers(creds fleet.Credentials) *fleet.Pager[fleet.DriverProfile] {
	return offsetPager(func(ctx context.Context, offset int) ([]fleet.DriverProfile, int, error) {
		var resp driversResponse
		err := c.do(ctx, creds, call{
			endpoint: "drivers",
			method:   http.MethodPost,
			path:     PathDrivers,
			body: offsetRequest{
				Limit:     DriversLimit,
				Offset:    offset,
				Query:     parkQuery{Park: parkFilter{ID: creds.ParkID}},
				SortOrder: []sortOrder{{Direction: "desc", Field: "updated_at"}},
			},
		}, &resp)
		return resp.DriverProfiles, resp.Total, err
	})
}

// Cars lists the cars of a park.
func (c *Client) Cars(creds fleet.Credentials) *fleet.Pager[fleet.CarRecord] {
	return offsetPager(func(ctx context.Context, offset int) ([]fleet.CarRecord, int, error) {
		var resp carsResponse
		err := c.do(ctx, creds, call{
			endpoint: "cars",
			method:   http.MethodPost,
			path:     PathCars,
			body: offsetRequest{
				Limit:  CarsLimit,
				Offset: offset,
				Query:  parkQuery{Park: parkFilter{ID: creds.ParkID}},
			},
		}, &resp)
		return resp.Cars, resp.Total, err
	})
}

// Orders lists the completed orders of a park which ended in w.
// The bounds of w are sent with the offset of their locations.
func (c *Client) Orders(creds fleet.Credentials, w model.Window) *fleet.Pager[fleet.OrderRecord] {
	filter := &orderFilter{
		EndedAt: &timeRange{
			From: w.From.Format(time.RFC3339),
			To:   w.To.Format(time.RFC3339),
		},
		Statuses: []string{OrderStatusComplete},
	}
	return fleet.NewPager(func(ctx context.Context, cursor string) ([]fleet.OrderRecord, string, error) {
		var resp ordersResponse
		err := c.do(ctx, creds, call{
			endpoint: "orders",
			method:   http.MethodPost,
			path:     PathOrders,
			body: cursorRequest{
				Limit:  OrdersLimit,
				Cursor: cursor,
				Query:  parkQuery{Park: parkFilter{ID: creds.ParkID, Order: filter}},
			},
		}, &resp)
		if err != nil {
			return nil, "", err
		}
		return resp.Orders, nextCursor(cursor, resp.Cursor, len(resp.Orders)), nil
	})
}

// Transactions lists the transactions of the orderIDs orders.
func (c *Client) Transactions(creds fleet.Credentials, orderIDs []string) *fleet.Pager[fleet.TransactionRecord] {
	filter := &orderFilter{IDs: orderIDs}
	return fleet.NewPager(func(ctx context.Context, cursor string) ([]fleet.TransactionRecord, string, error) {
		var resp transactionsResponse
		err := c.do(ctx, creds, call{
			endpoint: "transactions",
			method:   http.MethodPost,
			path:     PathTransactions,
			body: cursorRequest{
				Limit:  TransactionsLimit,
				Cursor: cursor,
				Query:  parkQuery{Park: parkFilter{ID: creds.ParkID, Order: filter}},
			},
		}, &resp)
		if err != nil {
			return nil, "", err
		}
		return resp.Transactions, nextCursor(cursor, resp.Cursor, len(resp.Transactions)), nil
	})
}

// nextCursor stops the iteration on an empty page or a repeated
// cursor, so a misbehaving server may not cause an endless loop.
func nextCursor(cur, next string, n int) string {
	if n == 0 || next == cur {
		return ""
	}
	return next
}

// WorkRules fetches the work rules of a park.
func (c *Client) WorkRules(ctx context.Context, creds fleet.Credentials) ([]fleet.WorkRuleRecord, error) {
	var resp workRulesResponse
	err := c.do(ctx, creds, call{
		endpoint: "work-rules",
		method:   http.MethodGet,
		path:     PathWorkRules,
		query:    url.Values{"park_id": {creds.ParkID}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// Categories fetches the transaction categories of a park.
func (c *Client) Categories(ctx context.Context, creds fleet.Credentials) ([]fleet.CategoryRecord, error) {
	var resp categoriesResponse
	err := c.do(ctx, creds, call{
		endpoint: "categories",
		method:   http.MethodPost,
		path:     PathCategories,
		body:     map[string]parkQuery{"query": {Park: parkFilter{ID: creds.ParkID}}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// ParkInfo fetches the park description which accompanies the driver
// profiles list. One profile is requested, so the call is cheap.
func (c *Client) ParkInfo(ctx context.Context, creds fleet.Credentials) (*fleet.ParkInfo, error) {
	var resp driversResponse
	err := c.do(ctx, creds, call{
		endpoint: "drivers",
		method:   http.MethodPost,
		path:     PathDrivers,
		body: offsetRequest{
			Limit: 1,
			Query: parkQuery{Park: parkFilter{ID: creds.ParkID}},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Parks) == 0 {
		return nil, errors.New("park info is missing from the drivers response")
	}
	return &resp.Parks[0], nil
}
