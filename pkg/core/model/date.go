// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the textual format of Date values.
const DateLayout = "2006-01-02"

// Date is a civil date with no time zone. It is used for the backfill
// watermark and the license dates. The zero Date represents an absent
// date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the civil date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses s with the DateLayout format. Also, it accepts
// RFC3339 timestamps and keeps their date part, since the fleet API
// reports some dates as full timestamps.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing %q as a date: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the zero (absent) date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats d with the DateLayout. The zero Date is formatted
// as an empty string.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// In returns the midnight which starts d in the loc location.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date which is n days after d (or before it for
// a negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Compare returns -1, 0, or +1 when d is before, equal to, or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.Compare(o) > 0
}

// Window returns the floating [00:00:00, 23:59:59] window of d, so
// it covers the whole day d in the time zone which it is anchored to.
func (d Date) Window() Window {
	from := d.In(time.UTC)
	return Window{
		From:     from,
		To:       from.Add(24*time.Hour - time.Second),
		Floating: true,
	}
}

// MarshalText implements the encoding.TextMarshaler interface.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// An empty text yields the zero Date.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	dd, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = dd
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ErrEmptyWindow indicates a window whose end is before its start.
var ErrEmptyWindow = errors.New("window ends before it starts")

// Window is a closed time range which limits the records fetched by
// an incremental sync.
//
// A floating window holds wall clock times with no meaningful zone,
// e.g., as typed by an operator without an offset. It is anchored to
// the zone of each park before use, so the same floating window may
// describe different instants for parks in different zones.
type Window struct {
	From, To time.Time
	Floating bool
}

// TrailingWindow returns the [now-d, now] window, expressed in loc.
func TrailingWindow(now time.Time, d time.Duration, loc *time.Location) Window {
	now = now.In(loc)
	return Window{From: now.Add(-d), To: now}
}

// Validate returns ErrEmptyWindow if w ends before it starts.
func (w Window) Validate() error {
	if w.To.Before(w.From) {
		return ErrEmptyWindow
	}
	return nil
}

// Anchor returns w expressed in loc. The wall clock of a floating
// window is kept and interpreted in loc, while the instants of other
// windows are kept and only their zone is converted.
func (w Window) Anchor(loc *time.Location) Window {
	if !w.Floating {
		return Window{From: w.From.In(loc), To: w.To.In(loc)}
	}
	return Window{From: wallIn(w.From, loc), To: wallIn(w.To, loc)}
}

func wallIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), loc)
}

// ErrHalfWindow indicates that only one of the window boundaries was
// given. Either both or none of them must be given.
var ErrHalfWindow = errors.New("both window boundaries are required")

// ParseWindow parses the textual window boundaries of a manually
// triggered sync. Both empty strings yield a nil window, which asks
// for the default trailing window. Boundaries with a zone offset
// (RFC3339) make a fixed window. Boundaries without an offset, in
// the "2006-01-02T15:04:05" or "2006-01-02" layouts, make a floating
// window and a date-only "to" boundary covers its whole day.
func ParseWindow(from, to string) (*Window, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, ErrHalfWindow
	}
	f, ffloat, err := parseBound(from, false)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	t, tfloat, err := parseBound(to, true)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if ffloat != tfloat {
		return nil, errors.New("window boundaries must both have or lack a zone offset")
	}
	w := &Window{From: f, To: t, Floating: ffloat}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func parseBound(s string, end bool) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing %q: %w", s, err)
	}
	if end {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, true, nil
}
