// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Role is a database role name. The passwords of roles are kept in a
// passwords file (see the database section of the config file), so
// the config file itself carries no secret.
type Role string

const (
	// AdminRole is a super user role which must exist beforehand.
	// It is only used by the "db init" commands in order to create
	// the schema and the NormalRole and grant it privileges there.
	AdminRole Role = "admin"

	// NormalRole is the unprivileged role which owns the tables and
	// is used by the sync routines and the REST API.
	NormalRole Role = "fleetsync"
)
