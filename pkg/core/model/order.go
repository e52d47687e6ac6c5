// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a completed ride. It always references its park and driver,
// while the car reference is nil if the car was not known locally when
// the order was synchronized.
//
// TransactionsIngested is set after the transactions of this order are
// fetched and persisted. The transaction sync only considers orders
// with a false flag, so this flag works as its resume signal.
type Order struct {
	ID                   int64
	ParkID               int64
	DriverID             int64
	CarID                *int64
	ExternalID           string
	ShortID              int64
	Status               string
	Category             string
	PaymentMethod        string
	Price                decimal.Decimal
	BookedAt             time.Time
	EndedAt              time.Time
	AddressFrom          Address
	RoutePoints          []Address
	TransactionsIngested bool
}

// Address is a geographical point of an order route. Absent points
// are represented by the zero Address.
type Address struct {
	Text       string
	Coordinate Coordinate
}

// Coordinate represents a geographical location with a latitude and
// longitude.
type Coordinate struct {
	Lat, Lon float64
}
