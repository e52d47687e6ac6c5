// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/momeni/fleetsync/pkg/core/repo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlowThreshold is the duration which makes GORM log a query as slow.
const SlowThreshold = 200 * time.Millisecond

// Pool is a database connections pool. Its Conn method acquires one
// connection for the duration of a handler.
type Pool struct {
	*gorm.DB
}

var _ repo.Pool = (*Pool)(nil)

// NewPool connects to the database at url and checks that a
// connection may be acquired. GORM warnings are written to the
// default slog logger.
func NewPool(ctx context.Context, url string) (*Pool, error) {
	gdb, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             SlowThreshold,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				ParameterizedQueries:      true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	pool := &Pool{DB: gdb}
	if err = pool.Conn(ctx, NoOpConnHandler); err != nil {
		pool.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return pool, nil
}

// ConnHandler is the callback which receives an acquired connection.
type ConnHandler = repo.ConnHandler

// NoOpConnHandler does nothing. It may be used to test a pool.
func NoOpConnHandler(context.Context, repo.Conn) error {
	return nil
}

// Conn acquires a connection and passes it to f as a *Conn.
// The connection is released when f returns.
func (p *Pool) Conn(ctx context.Context, f ConnHandler) error {
	return p.DB.WithContext(ctx).Connection(func(c *gorm.DB) error {
		return f(ctx, &Conn{DB: c})
	})
}

// Close closes all connections of the pool.
func (p *Pool) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
