// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package workrulesrp

import (
	"context"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
)

type gWorkRule struct {
	ID         int64 `gorm:"primaryKey"`
	ParkID     int64
	ExternalID string
	Name       string
	IsEnabled  bool
}

func (gw *gWorkRule) TableName() string {
	return "work_rules"
}

var descriptor = postgres.MustDescriptor[gWorkRule](
	[]string{"park_id", "external_id"},
	[]string{"name", "is_enabled"},
)

func Upsert[Q postgres.Queryer](ctx context.Context, q Q, rules []model.WorkRule) (int64, error) {
	gws := make([]gWorkRule, len(rules))
	for i, r := range rules {
		gws[i] = gWorkRule{
			ParkID:     r.ParkID,
			ExternalID: r.ExternalID,
			Name:       r.Name,
			IsEnabled:  r.IsEnabled,
		}
	}
	return postgres.Upsert(ctx, q, descriptor, gws)
}

func IDs[Q postgres.Queryer](ctx context.Context, q Q, parkID int64, externalIDs []string) (map[string]int64, error) {
	return postgres.IDs(ctx, q, descriptor.Table, parkID, externalIDs)
}
