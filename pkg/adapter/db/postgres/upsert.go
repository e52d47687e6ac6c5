// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// UpsertBatchSize is the number of rows which are sent in each INSERT
// statement of an Upsert call.
const UpsertBatchSize = 500

var schemaCache sync.Map

// Descriptor describes how the rows of the T GORM model are upserted.
// UniqueKey lists the columns of a unique constraint which identify a
// row by its natural key. When an inserted row conflicts with an
// existing row on UniqueKey, the RefreshOnConflict columns of the
// existing row are overwritten and its other columns (including its
// primary key) are kept.
type Descriptor[T any] struct {
	Table             string
	UniqueKey         []string
	RefreshOnConflict []string
}

// NewDescriptor creates a Descriptor for the T model after checking
// that all named columns exist in T. The UniqueKey must be non-empty
// and must not overlap with the RefreshOnConflict columns.
func NewDescriptor[T any](uniqueKey, refresh []string) (Descriptor[T], error) {
	var d Descriptor[T]
	s, err := schema.Parse(new(T), &schemaCache, schema.NamingStrategy{})
	if err != nil {
		return d, fmt.Errorf("parsing %T model: %w", *new(T), err)
	}
	if len(uniqueKey) == 0 {
		return d, fmt.Errorf("%s: empty unique key", s.Table)
	}
	if len(refresh) == 0 {
		return d, fmt.Errorf("%s: no column to refresh", s.Table)
	}
	var errs []error
	for _, c := range uniqueKey {
		if _, ok := s.FieldsByDBName[c]; !ok {
			errs = append(errs, fmt.Errorf("unknown unique key column %q", c))
		}
	}
	for _, c := range refresh {
		f, ok := s.FieldsByDBName[c]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("unknown refresh column %q", c))
		case f.PrimaryKey:
			errs = append(errs, fmt.Errorf("primary key %q may not be refreshed", c))
		case slices.Contains(uniqueKey, c):
			errs = append(errs, fmt.Errorf("unique key %q may not be refreshed", c))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return d, fmt.Errorf("%s: %w", s.Table, err)
	}
	d.Table = s.Table
	d.UniqueKey = slices.Clone(uniqueKey)
	d.RefreshOnConflict = slices.Clone(refresh)
	return d, nil
}

// MustDescriptor is like NewDescriptor, but panics on errors.
// It is used for the package level descriptors of the repositories,
// so a mismatch between a descriptor and its model stops the program
// as soon as it starts.
func MustDescriptor[T any](uniqueKey, refresh []string) Descriptor[T] {
	d, err := NewDescriptor[T](uniqueKey, refresh)
	if err != nil {
		panic(err)
	}
	return d
}

// OnConflict returns the GORM clause which implements d.
func (d Descriptor[T]) OnConflict() clause.OnConflict {
	cols := make([]clause.Column, len(d.UniqueKey))
	for i, c := range d.UniqueKey {
		cols[i] = clause.Column{Name: c}
	}
	return clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(d.RefreshOnConflict),
	}
}

// Upsert inserts the rows or refreshes their conflicting rows as
// described by d. The primary keys of rows are filled from the
// database. It returns the number of inserted or updated rows.
// Rows must not contain two items with the same unique key, since
// PostgreSQL may not update one row twice in one statement.
func Upsert[T any, Q Queryer](
	ctx context.Context, q Q, d Descriptor[T], rows []T,
) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	gdb := q.GORM(ctx).Clauses(d.OnConflict()).CreateInBatches(
		rows, UpsertBatchSize,
	)
	if err := gdb.Error; err != nil {
		return 0, fmt.Errorf("upserting into %s: %w", d.Table, err)
	}
	return gdb.RowsAffected, nil
}
