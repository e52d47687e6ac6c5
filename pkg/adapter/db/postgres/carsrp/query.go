// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package carsrp

import (
	"context"
	"fmt"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
)

type gCar struct {
	ID         int64 `gorm:"primaryKey"`
	ParkID     int64
	ExternalID string
	Brand      string
	CarModel   string `gorm:"column:model"`
	Year       int
	Color      string
	Number     string
	Callsign   string
	VIN        string `gorm:"column:vin"`
	Status     string
	Categories postgres.JSON[[]string] `gorm:"type:jsonb"`
	Amenities  postgres.JSON[[]string] `gorm:"type:jsonb"`
}

func (gc *gCar) TableName() string {
	return "cars"
}

func (gc *gCar) Model() *model.Car {
	return &model.Car{
		ID:         gc.ID,
		ParkID:     gc.ParkID,
		ExternalID: gc.ExternalID,
		Brand:      gc.Brand,
		Model:      gc.CarModel,
		Year:       gc.Year,
		Color:      gc.Color,
		Number:     gc.Number,
		Callsign:   gc.Callsign,
		VIN:        gc.VIN,
		Status:     gc.Status,
		Categories: gc.Categories.Data,
		Amenities:  gc.Amenities.Data,
	}
}

// The category and amenity lists are replaced as a whole, so a removed
// amenity disappears on the next resync.
var descriptor = postgres.MustDescriptor[gCar](
	[]string{"park_id", "external_id"},
	[]string{
		"brand", "model", "year", "color", "number", "callsign",
		"vin", "status", "categories", "amenities",
	},
)

func Upsert[Q postgres.Queryer](ctx context.Context, q Q, cars []model.Car) (int64, error) {
	gcs := make([]gCar, len(cars))
	for i, c := range cars {
		gcs[i] = gCar{
			ParkID:     c.ParkID,
			ExternalID: c.ExternalID,
			Brand:      c.Brand,
			CarModel:   c.Model,
			Year:       c.Year,
			Color:      c.Color,
			Number:     c.Number,
			Callsign:   c.Callsign,
			VIN:        c.VIN,
			Status:     c.Status,
			Categories: postgres.JSON[[]string]{Data: nonNil(c.Categories)},
			Amenities:  postgres.JSON[[]string]{Data: nonNil(c.Amenities)},
		}
	}
	return postgres.Upsert(ctx, q, descriptor, gcs)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func IDs[Q postgres.Queryer](ctx context.Context, q Q, parkID int64, externalIDs []string) (map[string]int64, error) {
	return postgres.IDs(ctx, q, descriptor.Table, parkID, externalIDs)
}

// List returns the cars of a park ordered by their local IDs.
func List[Q postgres.Queryer](ctx context.Context, q Q, parkID int64) ([]model.Car, error) {
	var gcs []gCar
	err := q.GORM(ctx).Where("park_id = ?", parkID).Order("id").Find(&gcs).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	cs := make([]model.Car, len(gcs))
	for i := range gcs {
		cs[i] = *gcs[i].Model()
	}
	return cs, nil
}
