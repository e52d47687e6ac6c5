// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schemarp implements the repo.Schema repository which is
// used by the admin role for (re)creating the database schema and
// the normal role.
package schemarp

import (
	"context"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/repo"
	"github.com/momeni/fleetsync/pkg/core/scram"
)

// Repo carries the role names suffix, which is appended to all roles,
// and the hasher of the role passwords.
type Repo struct {
	roleSuffix repo.Role
	hasher     scram.Hasher
}

func New(roleSuffix repo.Role, hasher scram.Hasher) *Repo {
	return &Repo{roleSuffix: roleSuffix, hasher: hasher}
}

var _ repo.Schema = (*Repo)(nil)

func (schema *Repo) Conn(c repo.Conn) repo.SchemaQueryer {
	return queryer[*postgres.Conn]{q: c.(*postgres.Conn), r: schema}
}

func (schema *Repo) Tx(tx repo.Tx) repo.SchemaTxQueryer {
	return txQueryer{queryer[*postgres.Tx]{q: tx.(*postgres.Tx), r: schema}}
}

type queryer[Q postgres.Queryer] struct {
	q Q
	r *Repo
}

func (sq queryer[Q]) DropIfExists(ctx context.Context, schema string) error {
	return DropIfExists(ctx, sq.q, schema)
}

func (sq queryer[Q]) CreateSchema(ctx context.Context, schema string) error {
	return CreateSchema(ctx, sq.q, schema)
}

func (sq queryer[Q]) CreateRoleIfNotExists(ctx context.Context, role repo.Role) error {
	return CreateRoleIfNotExists(ctx, sq.q, sq.r.roleSuffix, role)
}

func (sq queryer[Q]) GrantPrivileges(ctx context.Context, schema string, role repo.Role) error {
	return GrantPrivileges(ctx, sq.q, sq.r.roleSuffix, schema, role)
}

func (sq queryer[Q]) SetSearchPath(ctx context.Context, schema string, role repo.Role) error {
	return SetSearchPath(ctx, sq.q, sq.r.roleSuffix, schema, role)
}

type txQueryer struct {
	queryer[*postgres.Tx]
}

func (tq txQueryer) ChangePasswords(
	ctx context.Context, roles []repo.Role, passwords []string,
) error {
	return ChangePasswords(ctx, tq.q, tq.r.roleSuffix, tq.r.hasher, roles, passwords)
}
