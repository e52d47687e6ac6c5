// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/fleetsync/pkg/core/model"
)

// JSON is a jsonb column which holds a T value.
type JSON[T any] struct {
	Data T
}

// Value encodes j as a JSON document.
func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, fmt.Errorf("encoding jsonb: %w", err)
	}
	return string(b), nil
}

// Scan decodes a JSON document into j. NULL becomes the zero T.
func (j *JSON[T]) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		var zero T
		j.Data = zero
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
	if err := json.Unmarshal(b, &j.Data); err != nil {
		return fmt.Errorf("decoding jsonb: %w", err)
	}
	return nil
}

// NullTime converts a zero t to nil, so it is stored as NULL.
func NullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// TimeOf converts a NULL timestamp back to the zero time.Time.
func TimeOf(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// NullDate converts d to a date column value, storing a zero d as NULL.
func NullDate(d model.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.In(time.UTC)
	return &t
}

// DateOf converts a date column value back to a model.Date.
func DateOf(t *time.Time) model.Date {
	if t == nil {
		return model.Date{}
	}
	return model.DateOf(*t)
}

// UniqueViolation is the SQLSTATE of the unique_violation errors.
const UniqueViolation = "23505"

// IsUniqueViolation reports whether err is caused by a violated
// unique constraint.
func IsUniqueViolation(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == UniqueViolation
}
