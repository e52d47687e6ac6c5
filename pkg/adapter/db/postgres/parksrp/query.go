// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parksrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gPark struct {
	ID         int64 `gorm:"primaryKey"`
	ExternalID string
	ClientID   string
	APIKey     string `gorm:"column:api_key"`
	Name       string
	City       string
	TimeZone   string
	IsActive   bool
}

func (gp *gPark) TableName() string {
	return "parks"
}

func (gp *gPark) Model() *model.Park {
	return &model.Park{
		ID:         gp.ID,
		ExternalID: gp.ExternalID,
		ClientID:   gp.ClientID,
		APIKey:     gp.APIKey,
		Name:       gp.Name,
		City:       gp.City,
		TimeZone:   gp.TimeZone,
		IsActive:   gp.IsActive,
	}
}

func parkOf(p *model.Park) *gPark {
	return &gPark{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		ClientID:   p.ClientID,
		APIKey:     p.APIKey,
		Name:       p.Name,
		City:       p.City,
		TimeZone:   p.TimeZone,
		IsActive:   p.IsActive,
	}
}

// List returns the parks ordered by their city and external id.
func List[Q postgres.Queryer](ctx context.Context, q Q, activeOnly bool) ([]model.Park, error) {
	var gps []gPark
	gdb := q.GORM(ctx).Order("city").Order("external_id")
	if activeOnly {
		gdb = gdb.Where("is_active")
	}
	if err := gdb.Find(&gps).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	ps := make([]model.Park, len(gps))
	for i := range gps {
		ps[i] = *gps[i].Model()
	}
	return ps, nil
}

func ByExternalID[Q postgres.Queryer](ctx context.Context, q Q, externalID string) (*model.Park, error) {
	var gp gPark
	err := q.GORM(ctx).Where("external_id = ?", externalID).Take(&gp).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, repo.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gp.Model(), nil
}

// Create inserts p. A park whose external id is registered already
// causes a conflict error.
func Create[Q postgres.Queryer](ctx context.Context, q Q, p *model.Park) (*model.Park, error) {
	gp := parkOf(p)
	gp.ID = 0
	if err := q.GORM(ctx).Create(gp).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, cerr.Conflict(
				fmt.Errorf("park %q exists: %w", p.ExternalID, err),
			)
		}
		return nil, fmt.Errorf("insert: %w", err)
	}
	return gp.Model(), nil
}

// Update overwrites the mutable fields of the park which is identified
// by the external id of p.
func Update[Q postgres.Queryer](ctx context.Context, q Q, p *model.Park) (*model.Park, error) {
	gp := parkOf(p)
	gp.ID = 0
	var gps []gPark
	gdb := q.GORM(ctx).Model(&gps).Clauses(clause.Returning{}).Select(
		"client_id", "api_key", "name", "city", "time_zone", "is_active",
	).Where(
		"external_id = ?", p.ExternalID,
	).Updates(gp)
	if err := gdb.Error; err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if len(gps) == 0 {
		return nil, repo.ErrNotFound
	}
	return gps[0].Model(), nil
}
