// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// TxHandler is a function which uses a Tx during its execution.
// Returning an error rolls the transaction back.
type TxHandler func(context.Context, Tx) error

// Conn is a database connection. Each statement which is executed on
// a Conn directly runs in its own auto-committed transaction.
type Conn interface {
	Queryer

	// Tx begins a transaction, passes it to handler, and commits it
	// if handler returns nil. Otherwise, the transaction is rolled
	// back and the handler error is returned.
	Tx(ctx context.Context, handler TxHandler) error

	// IsConn prevents a Tx from implementing the Conn interface.
	IsConn()
}
