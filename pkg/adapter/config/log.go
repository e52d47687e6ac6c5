// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/momeni/fleetsync/pkg/core/log"
)

// Log contains the structured logging settings.
type Log struct {
	Level  string // debug, info (default), warn, or error
	Format string // text (default) or json

	level slog.Level
}

// ValidateAndNormalize parses the level and checks the format.
func (l *Log) ValidateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	if err := l.level.UnmarshalText([]byte(l.Level)); err != nil {
		return fmt.Errorf("parsing level: %w", err)
	}
	switch l.Format {
	case "":
		l.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", l.Format)
	}
	return nil
}

// Setup installs the default logger which writes to w.
func (l Log) Setup(w io.Writer) *slog.Logger {
	return log.Setup(w, l.Format, l.level)
}
