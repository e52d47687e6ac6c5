// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the fleetsync
// architecture, containing the entities which are synchronized from
// the remote fleet API into the local store. This layer may not depend
// on outer layers, while all other layers may depend on it.
//
// Models carry no ORM tags. Each repository in the adapter layer keeps
// its own unexported struct which matches the corresponding table and
// converts it to/from these models, so the storage layout may evolve
// independently of the use cases.
//
// Every synchronized entity has two identities. The ExternalID field
// holds the identifier which is assigned by the remote fleet API and
// is the natural key for upserts. The ID field holds the local
// surrogate key which is assigned by the store and used for the
// references among local rows. A zero ID means "not persisted yet".
package model

import (
	"fmt"
	"log/slog"
	"time"
)

// Park is a fleet owner (a tenant of the remote platform) whose data
// is synchronized. It is the parent of all other synchronized entities.
// Parks are registered by an administrator and read by every sync
// routine. Inactive parks are skipped by all sync loops.
type Park struct {
	ID         int64
	ExternalID string // park id as known by the fleet API
	ClientID   string // client id credential
	APIKey     string // API key credential, never logged
	Name       string
	City       string
	TimeZone   string // IANA name, empty means the default zone
	IsActive   bool
}

// Location resolves the time zone of p. Parks without a configured
// zone use the def location. An unknown zone name is reported as an
// error rather than falling back silently, so a typo in the park
// settings does not shift all of its fetch windows.
func (p *Park) Location(def *time.Location) (*time.Location, error) {
	if p.TimeZone == "" {
		return def, nil
	}
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading %q time zone: %w", p.TimeZone, err)
	}
	return loc, nil
}

// LogValue implements slog.LogValuer. Credentials are omitted.
func (p *Park) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("external_id", p.ExternalID),
		slog.String("name", p.Name),
		slog.String("city", p.City),
		slog.Bool("active", p.IsActive),
	)
}
