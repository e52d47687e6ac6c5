// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fleet

import (
	"time"

	"github.com/shopspring/decimal"
)

// DriverProfile is one item of the driver profiles list.
// The License is nil when the API omits the driver_license object.
type DriverProfile struct {
	Profile  Profile          `json:"driver_profile"`
	Accounts []AccountRecord  `json:"accounts"`
	License  *LicenseRecord   `json:"driver_license"`
	Car      *ReferenceRecord `json:"car"`
}

// Profile holds the personal fields of a driver profile.
type Profile struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	MiddleName  string   `json:"middle_name"`
	Phones      []string `json:"phones"`
	WorkStatus  string   `json:"work_status"`
	WorkRuleID  string   `json:"work_rule_id"`
	CreatedDate string   `json:"created_date"`
}

// AccountRecord is a financial account of a driver.
type AccountRecord struct {
	ID           string          `json:"id"`
	Balance      decimal.Decimal `json:"balance"`
	BalanceLimit decimal.Decimal `json:"balance_limit"`
	Currency     string          `json:"currency"`
	Type         string          `json:"type"`
}

// LicenseRecord is the driving license of a driver.
type LicenseRecord struct {
	NormalizedNumber string `json:"normalized_number"`
	Country          string `json:"country"`
	IssueDate        string `json:"issue_date"`
	ExpirationDate   string `json:"expiration_date"`
}

// ReferenceRecord is a reference to another entity by its id.
type ReferenceRecord struct {
	ID string `json:"id"`
}

// CarRecord is one item of the cars list.
type CarRecord struct {
	ID        string   `json:"id"`
	Brand     string   `json:"brand"`
	Model     string   `json:"model"`
	Year      int      `json:"year"`
	Color     string   `json:"color"`
	Number    string   `json:"number"`
	Callsign  string   `json:"callsign"`
	VIN       string   `json:"vin"`
	Status    string   `json:"status"`
	Category  []string `json:"category"`
	Amenities []string `json:"amenities"`
}

// WorkRuleRecord is one item of the work rules list.
type WorkRuleRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsEnabled bool   `json:"is_enabled"`
}

// OrderRecord is one item of the orders list. Car and AddressFrom
// are nil when the API omits them.
type OrderRecord struct {
	ID            string           `json:"id"`
	ShortID       int64            `json:"short_id"`
	Status        string           `json:"status"`
	Category      string           `json:"category"`
	PaymentMethod string           `json:"payment_method"`
	Price         decimal.Decimal  `json:"price"`
	BookedAt      time.Time        `json:"booked_at"`
	EndedAt       time.Time        `json:"ended_at"`
	Driver        ReferenceRecord  `json:"driver_profile"`
	Car           *ReferenceRecord `json:"car"`
	AddressFrom   *AddressRecord   `json:"address_from"`
	RoutePoints   []AddressRecord  `json:"route_points"`
}

// AddressRecord is a point of an order route.
type AddressRecord struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// TransactionRecord is one item of the order transactions list.
type TransactionRecord struct {
	ID              string          `json:"id"`
	EventAt         time.Time       `json:"event_at"`
	CategoryID      string          `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	GroupID         string          `json:"group_id"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currency_code"`
	Description     string          `json:"description"`
	DriverProfileID string          `json:"driver_profile_id"`
	OrderID         string          `json:"order_id"`
}

// CategoryRecord is one item of the transaction categories list.
type CategoryRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	IsEnabled bool   `json:"is_enabled"`
}

// ParkInfo describes a park as reported by the fleet API.
type ParkInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}
