// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package transactionsrp

import (
	"context"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/shopspring/decimal"
)

type gTransaction struct {
	ID           int64 `gorm:"primaryKey"`
	ParkID       int64
	DriverID     int64
	OrderID      int64
	ExternalID   string
	EventAt      *time.Time
	CategoryID   string
	CategoryName string
	GroupID      string
	Amount       decimal.Decimal `gorm:"type:numeric"`
	Currency     string
	Description  string
}

func (gt *gTransaction) TableName() string {
	return "transactions"
}

// The amount is refreshed too, so a corrected transaction replaces
// its earlier amount instead of being counted twice.
var descriptor = postgres.MustDescriptor[gTransaction](
	[]string{"external_id"},
	[]string{
		"park_id", "driver_id", "order_id", "event_at",
		"category_id", "category_name", "group_id", "amount",
		"currency", "description",
	},
)

func Upsert[Q postgres.Queryer](ctx context.Context, q Q, txs []model.Transaction) (int64, error) {
	gts := make([]gTransaction, len(txs))
	for i, t := range txs {
		gts[i] = gTransaction{
			ParkID:       t.ParkID,
			DriverID:     t.DriverID,
			OrderID:      t.OrderID,
			ExternalID:   t.ExternalID,
			EventAt:      postgres.NullTime(t.EventAt),
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			GroupID:      t.GroupID,
			Amount:       t.Amount,
			Currency:     t.Currency,
			Description:  t.Description,
		}
	}
	return postgres.Upsert(ctx, q, descriptor, gts)
}

type gCategory struct {
	ID         int64 `gorm:"primaryKey"`
	ParkID     int64
	ExternalID string
	Name       string
	GroupID    string
	GroupName  string
	IsEnabled  bool
}

func (gc *gCategory) TableName() string {
	return "transaction_categories"
}

var categoryDescriptor = postgres.MustDescriptor[gCategory](
	[]string{"park_id", "external_id"},
	[]string{"name", "group_id", "group_name", "is_enabled"},
)

func UpsertCategories[Q postgres.Queryer](ctx context.Context, q Q, cs []model.TransactionCategory) (int64, error) {
	gcs := make([]gCategory, len(cs))
	for i, c := range cs {
		gcs[i] = gCategory{
			ParkID:     c.ParkID,
			ExternalID: c.ExternalID,
			Name:       c.Name,
			GroupID:    c.GroupID,
			GroupName:  c.GroupName,
			IsEnabled:  c.IsEnabled,
		}
	}
	return postgres.Upsert(ctx, q, categoryDescriptor, gcs)
}
