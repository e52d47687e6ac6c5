// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres_test

import (
	"testing"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gThing struct {
	ID         int64 `gorm:"primaryKey"`
	ParkID     int64
	ExternalID string
	Name       string
	Weight     int
}

func (gt *gThing) TableName() string {
	return "things"
}

func TestNewDescriptor(t *testing.T) {
	d, err := postgres.NewDescriptor[gThing](
		[]string{"park_id", "external_id"}, []string{"name", "weight"},
	)
	require.NoError(t, err)
	assert.Equal(t, "things", d.Table)
	oc := d.OnConflict()
	require.Len(t, oc.Columns, 2)
	assert.Equal(t, "park_id", oc.Columns[0].Name)
	assert.Equal(t, "external_id", oc.Columns[1].Name)
	assert.Len(t, oc.DoUpdates, 2)
}

func TestNewDescriptorRejectsBadColumns(t *testing.T) {
	cases := map[string]struct {
		key, refresh []string
		msg          string
	}{
		"empty key":       {nil, []string{"name"}, "empty unique key"},
		"nothing to set":  {[]string{"external_id"}, nil, "no column to refresh"},
		"unknown key":     {[]string{"ext"}, []string{"name"}, `unknown unique key column "ext"`},
		"unknown refresh": {[]string{"external_id"}, []string{"title"}, `unknown refresh column "title"`},
		"primary key":     {[]string{"external_id"}, []string{"id"}, `primary key "id"`},
		"key refreshed":   {[]string{"external_id"}, []string{"external_id"}, `unique key "external_id"`},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := postgres.NewDescriptor[gThing](c.key, c.refresh)
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.msg)
			assert.Panics(t, func() {
				postgres.MustDescriptor[gThing](c.key, c.refresh)
			})
		})
	}
}

func TestNullableConversions(t *testing.T) {
	assert.Nil(t, postgres.NullTime(time.Time{}))
	assert.True(t, postgres.TimeOf(nil).IsZero())
	assert.Nil(t, postgres.NullDate(model.Date{}))
	assert.True(t, postgres.DateOf(nil).IsZero())

	d := model.Date{Year: 2024, Month: time.March, Day: 31}
	assert.Equal(t, d, postgres.DateOf(postgres.NullDate(d)))
}

func TestJSONColumn(t *testing.T) {
	in := postgres.JSON[[]string]{Data: []string{"wifi", "child_seat"}}
	v, err := in.Value()
	require.NoError(t, err)
	assert.Equal(t, `["wifi","child_seat"]`, v)

	var out postgres.JSON[[]string]
	require.NoError(t, out.Scan([]byte(`["wifi"]`)))
	assert.Equal(t, []string{"wifi"}, out.Data)
	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out.Data)
	assert.Error(t, out.Scan(42))
}
