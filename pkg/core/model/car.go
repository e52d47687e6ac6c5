// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// Car is a vehicle which belongs to exactly one park.
// All of its descriptive fields are overwritten on every resync.
type Car struct {
	ID         int64
	ParkID     int64
	ExternalID string
	Brand      string
	Model      string
	Year       int
	Color      string
	Number     string // registration plate
	Callsign   string
	VIN        string
	Status     string
	Categories []string
	Amenities  []string
}

// WorkRule is a named set of work conditions which a park offers to
// its drivers. It is identified by its external id within its park.
type WorkRule struct {
	ID         int64
	ParkID     int64
	ExternalID string
	Name       string
	IsEnabled  bool
}
