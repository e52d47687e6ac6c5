// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the financial sub-account of a driver. Its external id is
// unique among all parks. Balances are upserted before drivers, so the
// driver rows can reference them by their local ID.
type Balance struct {
	ID           int64
	ExternalID   string
	Balance      decimal.Decimal
	BalanceLimit decimal.Decimal
	Currency     string
	Type         string
}

// Driver is a driver profile of a park. The WorkRuleID and BalanceID
// fields hold local IDs and are nil when the referenced entity could
// not be found in the store at the time of upsert.
type Driver struct {
	ID         int64
	ParkID     int64
	ExternalID string
	FirstName  string
	LastName   string
	MiddleName string
	Phone      string
	WorkStatus string
	CreatedAt  time.Time
	WorkRuleID *int64
	BalanceID  *int64
	License    DriverLicense
}

// DriverLicense is the optional driving license sub-structure of a
// driver. When the fleet API omits it, all fields keep their zero
// values, so a later resync clears any previously stored license.
type DriverLicense struct {
	Number     string
	Country    string
	IssueDate  Date
	ExpiryDate Date
}
