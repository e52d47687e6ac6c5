// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"fmt"

	"github.com/momeni/fleetsync/pkg/core/repo"
	"gorm.io/gorm"
)

// Conn is one database connection. It runs each statement in its own
// implicit transaction, unless the Tx method is used.
type Conn struct {
	*gorm.DB
}

// TxHandler is the callback which receives a begun transaction.
type TxHandler = repo.TxHandler

// Tx begins a transaction and passes it to f. The transaction is
// committed if f returns nil, and is rolled back if f returns an
// error or panics.
func (c *Conn) Tx(ctx context.Context, f TxHandler) (err error) {
	tx := c.DB.WithContext(ctx).Begin()
	if err = tx.Error; err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			if err = tx.Rollback().Error; err != nil {
				err = fmt.Errorf("panicked: %v, rollback: %w", r, err)
				return
			}
			err = fmt.Errorf("panicked: %v", r)
			return
		}
		if err != nil {
			if err2 := tx.Rollback().Error; err2 != nil {
				err = fmt.Errorf("%w, rollback: %w", err, err2)
			}
			return
		}
		if err = tx.Commit().Error; err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()
	return f(ctx, &Tx{DB: tx})
}

// Exec runs sql with args and returns the number of affected rows.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return exec(c.DB.WithContext(ctx), sql, args...)
}

// Query runs sql with args. The returned Rows must be closed before
// the connection may run another statement.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := c.DB.WithContext(ctx).Raw(sql, args...).Rows()
	return rowsAdapter{rows}, err
}

// IsConn marks Conn as a repo.Conn.
func (c *Conn) IsConn() {
}

// GORM returns the embedded *gorm.DB in a session which uses ctx.
func (c *Conn) GORM(ctx context.Context) *gorm.DB {
	return c.DB.WithContext(ctx)
}

func exec(gdb *gorm.DB, sql string, args ...any) (int64, error) {
	gdb = gdb.Exec(sql, args...)
	if err := gdb.Error; err != nil {
		return 0, err
	}
	return gdb.RowsAffected, nil
}
