// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres adapts a PostgreSQL database, accessed by GORM and
// the pgx driver, to the repo.Pool, repo.Conn, and repo.Tx interfaces.
// The *rp sub-packages implement the repositories with generic query
// functions which accept either of a *Conn or a *Tx (see Queryer).
// Batch upserts are described by Descriptor values, so the conflict
// target and the refreshed columns of each table are checked against
// its GORM model when the repository package is initialized.
package postgres

import (
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/migration"
	"github.com/momeni/fleetsync/pkg/core/model"
)

// These constants represent the major, minor, and patch components of
// the current database schema semantic version.
const (
	Major = migration.Major
	Minor = migration.Minor
	Patch = migration.Patch
)

// Version is the latest supported database schema semantic version.
var Version = model.SemVer{Major, Minor, Patch}
