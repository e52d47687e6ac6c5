// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package driversrp

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
)

type gDriver struct {
	ID                int64 `gorm:"primaryKey"`
	ParkID            int64
	ExternalID        string
	FirstName         string
	LastName          string
	MiddleName        string
	Phone             string
	WorkStatus        string
	Created           *time.Time `gorm:"column:created_at"`
	WorkRuleID        *int64
	BalanceID         *int64
	LicenseNumber     string
	LicenseCountry    string
	LicenseIssueDate  *time.Time `gorm:"type:date"`
	LicenseExpiryDate *time.Time `gorm:"type:date"`
}

func (gd *gDriver) TableName() string {
	return "drivers"
}

func (gd *gDriver) Model() *model.Driver {
	return &model.Driver{
		ID:         gd.ID,
		ParkID:     gd.ParkID,
		ExternalID: gd.ExternalID,
		FirstName:  gd.FirstName,
		LastName:   gd.LastName,
		MiddleName: gd.MiddleName,
		Phone:      gd.Phone,
		WorkStatus: gd.WorkStatus,
		CreatedAt:  postgres.TimeOf(gd.Created),
		WorkRuleID: gd.WorkRuleID,
		BalanceID:  gd.BalanceID,
		License: model.DriverLicense{
			Number:     gd.LicenseNumber,
			Country:    gd.LicenseCountry,
			IssueDate:  postgres.DateOf(gd.LicenseIssueDate),
			ExpiryDate: postgres.DateOf(gd.LicenseExpiryDate),
		},
	}
}

// All descriptive fields are refreshed, including the nil references
// and the zero license fields, so a resync clears stale values.
var descriptor = postgres.MustDescriptor[gDriver](
	[]string{"park_id", "external_id"},
	[]string{
		"first_name", "last_name", "middle_name", "phone",
		"work_status", "created_at", "work_rule_id", "balance_id",
		"license_number", "license_country",
		"license_issue_date", "license_expiry_date",
	},
)

func Upsert[Q postgres.Queryer](ctx context.Context, q Q, drivers []model.Driver) (int64, error) {
	gds := make([]gDriver, len(drivers))
	for i, d := range drivers {
		gds[i] = gDriver{
			ParkID:            d.ParkID,
			ExternalID:        d.ExternalID,
			FirstName:         d.FirstName,
			LastName:          d.LastName,
			MiddleName:        d.MiddleName,
			Phone:             d.Phone,
			WorkStatus:        d.WorkStatus,
			Created:           postgres.NullTime(d.CreatedAt),
			WorkRuleID:        d.WorkRuleID,
			BalanceID:         d.BalanceID,
			LicenseNumber:     d.License.Number,
			LicenseCountry:    d.License.Country,
			LicenseIssueDate:  postgres.NullDate(d.License.IssueDate),
			LicenseExpiryDate: postgres.NullDate(d.License.ExpiryDate),
		}
	}
	return postgres.Upsert(ctx, q, descriptor, gds)
}

func IDs[Q postgres.Queryer](ctx context.Context, q Q, parkID int64, externalIDs []string) (map[string]int64, error) {
	return postgres.IDs(ctx, q, descriptor.Table, parkID, externalIDs)
}

func List[Q postgres.Queryer](ctx context.Context, q Q, parkID int64) ([]model.Driver, error) {
	var gds []gDriver
	err := q.GORM(ctx).Where("park_id = ?", parkID).Order("id").Find(&gds).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	ds := make([]model.Driver, len(gds))
	for i := range gds {
		ds[i] = *gds[i].Model()
	}
	return ds, nil
}
