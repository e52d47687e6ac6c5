// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settings contains the helpers which are shared by the
// config file sections, such as the Duration type and the pointer
// field normalization functions.
package settings

import (
	"log/slog"
	"strings"
	"time"
)

// Duration is a time.Duration which is read from and written to the
// config files in the time.ParseDuration format, e.g., 1h30m.
type Duration time.Duration

// UnmarshalText parses data with time.ParseDuration. The d receiver
// is only updated when data is valid.
func (d *Duration) UnmarshalText(data []byte) error {
	dd, err := time.ParseDuration(string(data))
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// String drops the zero minutes and seconds suffixes of the
// time.Duration representation, so 2h0m0s is reported as 2h and
// 30m0s as 30m.
func (d Duration) String() string {
	s := time.Duration(d).String()
	if t, ok := strings.CutSuffix(s, "m0s"); ok {
		s = t + "m"
	}
	if t, ok := strings.CutSuffix(s, "h0m"); ok {
		s = t + "h"
	}
	return s
}

// MarshalText implements encoding.TextMarshaler using String.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogValue implements slog.LogValuer.
func (d Duration) LogValue() slog.Value {
	return slog.DurationValue(time.Duration(d))
}
