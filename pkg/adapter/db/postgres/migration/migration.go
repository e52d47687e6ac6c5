// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package migration creates the tables of the fleetsync database
// schema. The tables of the major version N live in the fleetsyncN
// schema, which is created by the admin role and is the search_path of
// the normal role. New minor versions may only add tables or columns,
// so a binary which supports the vX.Y schema may also use the vX.Z
// schemas when Z <= Y.
package migration

import (
	"context"
	"fmt"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

// These constants indicate the latest database schema version which
// is created by the Initializer.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// NewInitializer creates an Initializer for the v schema version.
// Only the Major version is supported and its minor version must not
// be newer than Minor.
func NewInitializer(tx repo.Tx, v model.SemVer) (*Initializer, error) {
	switch {
	case v[0] != Major:
		return nil, fmt.Errorf("unsupported major: %d", v[0])
	case v[1] > Minor:
		return nil, fmt.Errorf("unsupported minor: %d", v[1])
	}
	return &Initializer{tx: tx}, nil
}

// Initializer creates the tables in an empty schema. It uses one
// transaction and the caller is responsible to commit it.
type Initializer struct {
	tx repo.Tx
}

var _ repo.SchemaInitializer = (*Initializer)(nil)

// InitDevSchema creates the tables and adds an inactive sample park,
// so the parks API may be tried before real credentials are set.
func (i *Initializer) InitDevSchema(ctx context.Context) error {
	if err := i.InitProdSchema(ctx); err != nil {
		return err
	}
	if _, err := i.tx.Exec(ctx, devData); err != nil {
		return fmt.Errorf("inserting dev data: %w", err)
	}
	return nil
}

// InitProdSchema creates the tables without any rows.
func (i *Initializer) InitProdSchema(ctx context.Context) error {
	if _, err := i.tx.Exec(ctx, tables); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}
