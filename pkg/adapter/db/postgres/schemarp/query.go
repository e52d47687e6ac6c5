// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/repo"
	"github.com/momeni/fleetsync/pkg/core/scram"
)

// PasswordIterations is the number of SCRAM iterations which are used
// for hashing the role passwords.
const PasswordIterations = 15000

func ident(names ...string) string {
	return pgx.Identifier(names).Sanitize()
}

func roleName(roleSuffix, role repo.Role) string {
	return ident(string(role + roleSuffix))
}

func DropIfExists[Q postgres.Queryer](ctx context.Context, q Q, schema string) error {
	_, err := q.Exec(ctx, "DROP SCHEMA IF EXISTS "+ident(schema)+" CASCADE")
	return err
}

func CreateSchema[Q postgres.Queryer](ctx context.Context, q Q, schema string) error {
	_, err := q.Exec(ctx, "CREATE SCHEMA "+ident(schema))
	return err
}

func CreateRoleIfNotExists[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix, role repo.Role,
) error {
	var n int64
	err := q.GORM(ctx).Raw(
		"SELECT count(*) FROM pg_roles WHERE rolname = ?",
		string(role+roleSuffix),
	).Scan(&n).Error
	if err != nil {
		return fmt.Errorf("finding role: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err = q.Exec(ctx, "CREATE ROLE "+roleName(roleSuffix, role)+" WITH LOGIN")
	return err
}

func GrantPrivileges[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role, schema string, role repo.Role,
) error {
	_, err := q.Exec(ctx, fmt.Sprintf(
		"GRANT ALL PRIVILEGES ON SCHEMA %s TO %s",
		ident(schema), roleName(roleSuffix, role),
	))
	return err
}

func SetSearchPath[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role, schema string, role repo.Role,
) error {
	_, err := q.Exec(ctx, fmt.Sprintf(
		"ALTER ROLE %s SET search_path TO %s",
		roleName(roleSuffix, role), ident(schema),
	))
	return err
}

// ChangePasswords hashes the passwords on the client side, so the
// plaintext passwords are neither sent to the server nor logged by it.
func ChangePasswords(
	ctx context.Context,
	tx *postgres.Tx,
	roleSuffix repo.Role,
	hasher scram.Hasher,
	roles []repo.Role,
	passwords []string,
) error {
	if len(roles) != len(passwords) {
		return errors.New("roles and passwords lengths differ")
	}
	for i, r := range roles {
		h, err := hasher.Hash(passwords[i], "", PasswordIterations)
		if err != nil {
			return fmt.Errorf("hashing password of %q: %w", r, err)
		}
		_, err = tx.Exec(ctx, fmt.Sprintf(
			"ALTER ROLE %s WITH PASSWORD '%s'",
			roleName(roleSuffix, r), strings.ReplaceAll(h, "'", "''"),
		))
		if err != nil {
			return fmt.Errorf("altering %q role: %w", r, err)
		}
	}
	return nil
}
