// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a financial event of a driver which belongs to one
// order. The Amount is overwritten whenever the same external id is
// synchronized again.
type Transaction struct {
	ID           int64
	ParkID       int64
	DriverID     int64
	OrderID      int64
	ExternalID   string
	EventAt      time.Time
	CategoryID   string
	CategoryName string
	GroupID      string
	Amount       decimal.Decimal
	Currency     string
	Description  string
}

// TransactionCategory is an entry of the per-park transaction category
// catalogue.
type TransactionCategory struct {
	ID         int64
	ParkID     int64
	ExternalID string
	Name       string
	GroupID    string
	GroupName  string
	IsEnabled  bool
}
