// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/momeni/fleetsync/pkg/core/repo"
	"gorm.io/gorm"
)

// Tx represents a database transaction. It is not safe for concurrent
// use. The sync routines persist each page of records in one Tx, so a
// failed page leaves no partial rows behind. PostgreSQL runs it with
// the READ COMMITTED isolation level by default.
type Tx struct {
	*gorm.DB
}

// Exec runs sql with args and returns the number of affected rows.
// In absence of args, sql may contain multiple statements which are
// separated by semicolons. The $1, ?, and @name placeholders are
// supported.
func (tx *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(tx.DB.WithContext(ctx), sql, args...)
}

// Query runs sql with args. The returned Rows must be closed before
// the transaction may run another statement.
func (tx *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := tx.DB.WithContext(ctx).Raw(sql, args...).Rows()
	return rowsAdapter{rows}, err
}

// IsTx marks Tx as a repo.Tx.
func (tx *Tx) IsTx() {
}

// GORM returns the embedded *gorm.DB in a session which uses ctx.
func (tx *Tx) GORM(ctx context.Context) *gorm.DB {
	return tx.DB.WithContext(ctx)
}
