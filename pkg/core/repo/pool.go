// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo defines the persistence contract of the use cases.
// A Pool hands out connections, a connection may open transactions,
// and each repository turns a connection or a transaction into a
// queryer which runs its entity-specific statements.
//
// All writes of synchronized entities are batch upserts keyed by the
// natural (external) identifiers of the entities, so repeated or
// concurrent runs converge instead of duplicating rows. Uniqueness is
// enforced by the store itself and the use cases take no locks.
package repo

import (
	"context"
	"errors"
)

// ErrNotFound is returned by single-row lookups which find no row.
var ErrNotFound = errors.New("not found")

// ConnHandler is a function which uses a Conn during its execution.
type ConnHandler func(context.Context, Conn) error

// Pool is a pool of database connections.
type Pool interface {
	// Conn acquires a connection, passes it to handler, and releases
	// it after handler returns.
	Conn(ctx context.Context, handler ConnHandler) error

	// Close closes all connections of the pool.
	Close() error
}
