// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemauc contains the database initialization use case.
// It (re)creates the fleetsyncN schema with the admin role, creates
// the normal role and renews the passwords of both roles, and then
// creates the tables with the normal role, so the normal role owns
// them and the sync routines never need the admin role.
package schemauc

import (
	"context"
	"fmt"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

// Settings provides the database connection information and the
// version specific components which the initialization needs.
type Settings interface {
	// ConnectionPool connects to the target database with the r role.
	ConnectionPool(ctx context.Context, r repo.Role) (repo.Pool, error)

	// NewSchemaRepo creates a repository for managing the schema and
	// the roles, which must be used with the admin role connections.
	NewSchemaRepo() repo.Schema

	// SchemaInitializer creates an initializer which creates the
	// tables of SchemaVersion using the tx transaction.
	SchemaInitializer(tx repo.Tx) (repo.SchemaInitializer, error)

	// RenewPasswords generates new passwords for roles, calls change
	// with them, and returns a finalizer which must be called after
	// the change is committed, so the new passwords are persisted.
	RenewPasswords(
		ctx context.Context,
		change func(
			ctx context.Context, roles []repo.Role, passwords []string,
		) error,
		roles ...repo.Role,
	) (finalizer func() error, err error)

	// SchemaVersion is the version of the schema to be created.
	SchemaVersion() model.SemVer
}

// InitDBUseCase represents the database initialization use case.
type InitDBUseCase struct {
	settings   Settings
	schemaRepo repo.Schema
}

// NewInitDB creates an InitDBUseCase for the ss target database.
func NewInitDB(ss Settings) *InitDBUseCase {
	return &InitDBUseCase{
		settings:   ss,
		schemaRepo: ss.NewSchemaRepo(),
	}
}

// InitProd recreates an empty schema and its tables with no rows.
// All existing data of the same major version is dropped.
func (iduc *InitDBUseCase) InitProd(ctx context.Context) error {
	return iduc.initDB(
		ctx,
		func(ctx context.Context, si repo.SchemaInitializer) error {
			return si.InitProdSchema(ctx)
		},
	)
}

// InitDev is like InitProd, but also inserts a sample inactive park.
func (iduc *InitDBUseCase) InitDev(ctx context.Context) error {
	return iduc.initDB(
		ctx,
		func(ctx context.Context, si repo.SchemaInitializer) error {
			return si.InitDevSchema(ctx)
		},
	)
}

func (iduc *InitDBUseCase) initDB(
	ctx context.Context,
	dbi func(ctx context.Context, si repo.SchemaInitializer) error,
) error {
	if err := iduc.dropAndCreateAgain(ctx); err != nil {
		return fmt.Errorf("dropping/recreating schema: %w", err)
	}
	p, err := iduc.settings.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for normal role: %w", err)
	}
	defer p.Close()
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			si, err := iduc.settings.SchemaInitializer(tx)
			if err != nil {
				return fmt.Errorf("creating SchemaInitializer: %w", err)
			}
			if err := dbi(ctx, si); err != nil {
				return fmt.Errorf("initializing schema: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("normal connection: %w", err)
	}
	return nil
}

// dropAndCreateAgain runs in one admin transaction and is repeatable,
// since the passwords file is only replaced after the commit.
func (iduc *InitDBUseCase) dropAndCreateAgain(ctx context.Context) error {
	p, err := iduc.settings.ConnectionPool(ctx, repo.AdminRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for admin: %w", err)
	}
	defer p.Close()
	var finalizer func() error
	err = p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := iduc.schemaRepo.Tx(tx)
			sn := SchemaName(iduc.settings.SchemaVersion()[0])
			if err := q.DropIfExists(ctx, sn); err != nil {
				return fmt.Errorf("dropping %q: %w", sn, err)
			}
			if err := q.CreateSchema(ctx, sn); err != nil {
				return fmt.Errorf("creating %q: %w", sn, err)
			}
			if err := q.CreateRoleIfNotExists(ctx, repo.NormalRole); err != nil {
				return fmt.Errorf("creating normal role: %w", err)
			}
			if err := q.GrantPrivileges(ctx, sn, repo.NormalRole); err != nil {
				return fmt.Errorf("granting normal role privs: %w", err)
			}
			if err := q.SetSearchPath(ctx, sn, repo.NormalRole); err != nil {
				return fmt.Errorf(
					"setting search_path of normal role to %q: %w", sn, err,
				)
			}
			finalizer, err = iduc.settings.RenewPasswords(
				ctx, q.ChangePasswords, repo.AdminRole, repo.NormalRole,
			)
			if err != nil {
				return fmt.Errorf("RenewPasswords: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("admin connection: %w", err)
	}
	if err := finalizer(); err != nil {
		return fmt.Errorf("finalizing passwords renewal: %w", err)
	}
	return nil
}

// SchemaName returns the database schema name of the major version,
// i.e., fleetsyncN for version N.
func SchemaName(major uint) string {
	return fmt.Sprintf("fleetsync%d", major)
}
