// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncuc

import (
	"time"

	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/model"
)

// The functions of this file convert one page of raw fleet API
// records to the models which are upserted. References to other
// entities are resolved from lookup maps which are filled once per
// page. A missing optional reference becomes nil, while a record with
// a missing mandatory parent is skipped and counted in the ParkResult.

// dedupe keeps one row per key. A repeated key overwrites the row of
// its first occurrence, so the last seen values win while the order of
// first occurrences is kept. Batch upserts fail if the same key
// appears twice in one statement, hence, every batch is deduplicated.
func dedupe[T any, K comparable](rows []T, key func(*T) K) []T {
	idx := make(map[K]int, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		k := key(&r)
		if i, ok := idx[k]; ok {
			out[i] = r
			continue
		}
		idx[k] = len(out)
		out = append(out, r)
	}
	return out
}

func optionalID(m map[string]int64, ext string) *int64 {
	if ext == "" {
		return nil
	}
	id, ok := m[ext]
	if !ok {
		return nil
	}
	return &id
}

func workRulesOf(parkID int64, recs []fleet.WorkRuleRecord) []model.WorkRule {
	rules := make([]model.WorkRule, 0, len(recs))
	for _, r := range recs {
		rules = append(rules, model.WorkRule{
			ParkID:     parkID,
			ExternalID: r.ID,
			Name:       r.Name,
			IsEnabled:  r.IsEnabled,
		})
	}
	return dedupe(rules, func(r *model.WorkRule) string { return r.ExternalID })
}

func carsOf(parkID int64, recs []fleet.CarRecord) []model.Car {
	cars := make([]model.Car, 0, len(recs))
	for _, r := range recs {
		cars = append(cars, model.Car{
			ParkID:     parkID,
			ExternalID: r.ID,
			Brand:      r.Brand,
			Model:      r.Model,
			Year:       r.Year,
			Color:      r.Color,
			Number:     r.Number,
			Callsign:   r.Callsign,
			VIN:        r.VIN,
			Status:     r.Status,
			Categories: nonNil(r.Category),
			Amenities:  nonNil(r.Amenities),
		})
	}
	return dedupe(cars, func(c *model.Car) string { return c.ExternalID })
}

// nonNil makes absent lists and empty lists identical, so a resync
// does not flip a column between NULL and an empty array.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// balanceOf returns the financial account of a driver profile or nil
// if it has none. The first account is the main one, other accounts
// are not synchronized.
func balanceOf(d *fleet.DriverProfile) *fleet.AccountRecord {
	if len(d.Accounts) == 0 || d.Accounts[0].ID == "" {
		return nil
	}
	return &d.Accounts[0]
}

func balancesOf(page []fleet.DriverProfile) []model.Balance {
	bs := make([]model.Balance, 0, len(page))
	for i := range page {
		a := balanceOf(&page[i])
		if a == nil {
			continue
		}
		bs = append(bs, model.Balance{
			ExternalID:   a.ID,
			Balance:      a.Balance,
			BalanceLimit: a.BalanceLimit,
			Currency:     a.Currency,
			Type:         a.Type,
		})
	}
	return dedupe(bs, func(b *model.Balance) string { return b.ExternalID })
}

func driversOf(
	parkID int64,
	page []fleet.DriverProfile,
	rules, balances map[string]int64,
) []model.Driver {
	ds := make([]model.Driver, 0, len(page))
	for i := range page {
		d := &page[i]
		p := &d.Profile
		drv := model.Driver{
			ParkID:     parkID,
			ExternalID: p.ID,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			MiddleName: p.MiddleName,
			WorkStatus: p.WorkStatus,
			CreatedAt:  parseTime(p.CreatedDate),
			WorkRuleID: optionalID(rules, p.WorkRuleID),
			License:    licenseOf(d.License),
		}
		if len(p.Phones) > 0 {
			drv.Phone = p.Phones[0]
		}
		if a := balanceOf(d); a != nil {
			drv.BalanceID = optionalID(balances, a.ID)
		}
		ds = append(ds, drv)
	}
	return dedupe(ds, func(d *model.Driver) string { return d.ExternalID })
}

// licenseOf converts an optional license. An absent license and its
// absent or malformed dates become zero values.
func licenseOf(l *fleet.LicenseRecord) model.DriverLicense {
	if l == nil {
		return model.DriverLicense{}
	}
	return model.DriverLicense{
		Number:     l.NormalizedNumber,
		Country:    l.Country,
		IssueDate:  parseDate(l.IssueDate),
		ExpiryDate: parseDate(l.ExpirationDate),
	}
}

func parseDate(s string) model.Date {
	if s == "" {
		return model.Date{}
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}
	}
	return d
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func ordersOf(
	parkID int64,
	page []fleet.OrderRecord,
	drivers, cars map[string]int64,
	pr *model.ParkResult,
) []model.Order {
	out := make([]model.Order, 0, len(page))
	for i := range page {
		r := &page[i]
		driverID, ok := drivers[r.Driver.ID]
		if !ok {
			pr.Skip(model.SkipMissingDriver, 1)
			continue
		}
		o := model.Order{
			ParkID:        parkID,
			DriverID:      driverID,
			ExternalID:    r.ID,
			ShortID:       r.ShortID,
			Status:        r.Status,
			Category:      r.Category,
			PaymentMethod: r.PaymentMethod,
			Price:         r.Price,
			BookedAt:      r.BookedAt,
			EndedAt:       r.EndedAt,
			AddressFrom:   addressOf(r.AddressFrom),
			RoutePoints:   make([]model.Address, 0, len(r.RoutePoints)),
		}
		if r.Car != nil {
			o.CarID = optionalID(cars, r.Car.ID)
		}
		for j := range r.RoutePoints {
			o.RoutePoints = append(o.RoutePoints, addressOf(&r.RoutePoints[j]))
		}
		out = append(out, o)
	}
	return dedupe(out, func(o *model.Order) string { return o.ExternalID })
}

func addressOf(a *fleet.AddressRecord) model.Address {
	if a == nil {
		return model.Address{}
	}
	return model.Address{
		Text:       a.Address,
		Coordinate: model.Coordinate{Lat: a.Lat, Lon: a.Lon},
	}
}

// transactionsOf adds the local IDs of the orders which have a
// transaction with an unknown driver to held, so they are not marked as
// ingested and their transactions are fetched again by a later run.
func transactionsOf(
	parkID int64,
	page []fleet.TransactionRecord,
	drivers, orders map[string]int64,
	held map[int64]bool,
	pr *model.ParkResult,
) []model.Transaction {
	txs := make([]model.Transaction, 0, len(page))
	for i := range page {
		r := &page[i]
		orderID, ok := orders[r.OrderID]
		if !ok {
			pr.Skip(model.SkipMissingOrder, 1)
			continue
		}
		driverID, ok := drivers[r.DriverProfileID]
		if !ok {
			pr.Skip(model.SkipMissingDriver, 1)
			held[orderID] = true
			continue
		}
		txs = append(txs, model.Transaction{
			ParkID:       parkID,
			DriverID:     driverID,
			OrderID:      orderID,
			ExternalID:   r.ID,
			EventAt:      r.EventAt,
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			GroupID:      r.GroupID,
			Amount:       r.Amount,
			Currency:     r.CurrencyCode,
			Description:  r.Description,
		})
	}
	return dedupe(txs, func(t *model.Transaction) string { return t.ExternalID })
}

func categoriesOf(parkID int64, recs []fleet.CategoryRecord) []model.TransactionCategory {
	cs := make([]model.TransactionCategory, 0, len(recs))
	for _, r := range recs {
		cs = append(cs, model.TransactionCategory{
			ParkID:     parkID,
			ExternalID: r.ID,
			Name:       r.Name,
			GroupID:    r.GroupID,
			GroupName:  r.GroupName,
			IsEnabled:  r.IsEnabled,
		})
	}
	return dedupe(cs, func(c *model.TransactionCategory) string { return c.ExternalID })
}
