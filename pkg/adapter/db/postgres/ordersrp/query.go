// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ordersrp

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type gOrder struct {
	ID                   int64 `gorm:"primaryKey"`
	ParkID               int64
	DriverID             int64
	CarID                *int64
	ExternalID           string
	ShortID              int64
	Status               string
	Category             string
	PaymentMethod        string
	Price                decimal.Decimal `gorm:"type:numeric"`
	BookedAt             *time.Time
	EndedAt              *time.Time
	AddressFrom          string
	AddressFromLat       float64
	AddressFromLon       float64
	RoutePoints          postgres.JSON[[]gPoint] `gorm:"type:jsonb"`
	TransactionsIngested bool                    `gorm:"->"`
}

type gPoint struct {
	Text string  `json:"text"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (g *gOrder) TableName() string {
	return "orders"
}

func (g *gOrder) Model() *model.Order {
	points := make([]model.Address, len(g.RoutePoints.Data))
	for i, p := range g.RoutePoints.Data {
		points[i] = model.Address{
			Text:       p.Text,
			Coordinate: model.Coordinate{Lat: p.Lat, Lon: p.Lon},
		}
	}
	return &model.Order{
		ID:            g.ID,
		ParkID:        g.ParkID,
		DriverID:      g.DriverID,
		CarID:         g.CarID,
		ExternalID:    g.ExternalID,
		ShortID:       g.ShortID,
		Status:        g.Status,
		Category:      g.Category,
		PaymentMethod: g.PaymentMethod,
		Price:         g.Price,
		BookedAt:      postgres.TimeOf(g.BookedAt),
		EndedAt:       postgres.TimeOf(g.EndedAt),
		AddressFrom: model.Address{
			Text: g.AddressFrom,
			Coordinate: model.Coordinate{
				Lat: g.AddressFromLat, Lon: g.AddressFromLon,
			},
		},
		RoutePoints:          points,
		TransactionsIngested: g.TransactionsIngested,
	}
}

// The transactions_ingested flag is read-only in gOrder and absent
// from the refreshed columns, so a resync keeps the ingested orders.
var descriptor = postgres.MustDescriptor[gOrder](
	[]string{"external_id"},
	[]string{
		"park_id", "driver_id", "car_id", "short_id", "status",
		"category", "payment_method", "price", "booked_at",
		"ended_at", "address_from", "address_from_lat",
		"address_from_lon", "route_points",
	},
)

func Upsert[Q postgres.Queryer](ctx context.Context, q Q, orders []model.Order) (int64, error) {
	gos := make([]gOrder, len(orders))
	for i, o := range orders {
		points := make([]gPoint, len(o.RoutePoints))
		for j, p := range o.RoutePoints {
			points[j] = gPoint{
				Text: p.Text, Lat: p.Coordinate.Lat, Lon: p.Coordinate.Lon,
			}
		}
		gos[i] = gOrder{
			ParkID:         o.ParkID,
			DriverID:       o.DriverID,
			CarID:          o.CarID,
			ExternalID:     o.ExternalID,
			ShortID:        o.ShortID,
			Status:         o.Status,
			Category:       o.Category,
			PaymentMethod:  o.PaymentMethod,
			Price:          o.Price,
			BookedAt:       postgres.NullTime(o.BookedAt),
			EndedAt:        postgres.NullTime(o.EndedAt),
			AddressFrom:    o.AddressFrom.Text,
			AddressFromLat: o.AddressFrom.Coordinate.Lat,
			AddressFromLon: o.AddressFrom.Coordinate.Lon,
			RoutePoints:    postgres.JSON[[]gPoint]{Data: points},
		}
	}
	return postgres.Upsert(ctx, q, descriptor, gos)
}

func IDs[Q postgres.Queryer](ctx context.Context, q Q, parkID int64, externalIDs []string) (map[string]int64, error) {
	return postgres.IDs(ctx, q, descriptor.Table, parkID, externalIDs)
}

// Pending returns up to limit orders of a park whose transactions are
// not ingested, using the orders_pending_idx partial index.
func Pending[Q postgres.Queryer](ctx context.Context, q Q, parkID, afterID int64, limit int) ([]model.Order, error) {
	return find(q.GORM(ctx).Where(
		"park_id = ? AND id > ? AND NOT transactions_ingested", parkID, afterID,
	).Order("id").Limit(limit))
}

func MarkTransactionsIngested[Q postgres.Queryer](ctx context.Context, q Q, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := q.GORM(ctx).Table(descriptor.Table).Where(
		"id IN ?", ids,
	).Update("transactions_ingested", true).Error
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

func find(gdb *gorm.DB) ([]model.Order, error) {
	var gos []gOrder
	if err := gdb.Find(&gos).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	orders := make([]model.Order, len(gos))
	for i := range gos {
		orders[i] = *gos[i].Model()
	}
	return orders, nil
}
