// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// SchemaInitializer creates the tables of the latest schema version in
// an existing and empty database schema.
type SchemaInitializer interface {
	// InitDevSchema creates the tables and fills them with a sample
	// inactive park, so a development setup can be tried quickly.
	InitDevSchema(ctx context.Context) error

	// InitProdSchema creates the tables with no rows.
	InitProdSchema(ctx context.Context) error
}

// Schema is the repository which manages database schema and roles.
// It is used with the AdminRole connections.
type Schema interface {
	Conn(Conn) SchemaQueryer
	Tx(Tx) SchemaTxQueryer
}

// SchemaTxQueryer adds the operations which must run in a transaction.
type SchemaTxQueryer interface {
	SchemaQueryer

	// ChangePasswords updates the passwords of the given roles.
	// The roles and passwords slices are used in pair.
	ChangePasswords(
		ctx context.Context, roles []Role, passwords []string,
	) error
}

// SchemaQueryer lists the schema management operations. The caller
// is responsible to pass trusted schema names.
type SchemaQueryer interface {
	// DropIfExists drops the schema with cascade if it exists.
	DropIfExists(ctx context.Context, schema string) error

	// CreateSchema creates a new schema which must not exist.
	CreateSchema(ctx context.Context, schema string) error

	// CreateRoleIfNotExists creates role with the login option.
	CreateRoleIfNotExists(ctx context.Context, role Role) error

	// GrantPrivileges grants all privileges on schema to role.
	GrantPrivileges(ctx context.Context, schema string, role Role) error

	// SetSearchPath makes schema the default search_path of role.
	SetSearchPath(ctx context.Context, schema string, role Role) error
}
