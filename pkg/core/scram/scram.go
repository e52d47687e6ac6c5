// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram defines the password hashing port which is used for
// setting the passwords of the database roles.
package scram

// Hasher hashes a password in the SCRAM format which PostgreSQL
// accepts in its CREATE/ALTER ROLE statements, e.g.,
//
//	SCRAM-SHA-256$<iters>:<b64-salt>$<b64-stored-key>:<b64-server-key>
//
// An empty salt asks for a random salt. Hashes can not be reversed.
type Hasher interface {
	Hash(pass, salt string, iters int) (string, error)
}
