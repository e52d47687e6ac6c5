// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"log/slog"
	"time"
)

// Valuer returns an Attr for the given slog.LogValuer value.
func Valuer(key string, value slog.LogValuer) slog.Attr {
	return slog.Any(key, value)
}

// Err returns an Attr for the given error value.
// A nil error is logged as the constant "no-error" string.
func Err(key string, value error) slog.Attr {
	if value == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, value.Error())
}

// Park returns the "park" attribute which identifies the park (by its
// external id) whose data is being processed.
func Park(externalID string) slog.Attr {
	return slog.String("park", externalID)
}

// Task returns the "task" attribute naming a sync routine.
func Task(name string) slog.Attr {
	return slog.String("task", name)
}

// Window groups the start and end of a fetch window.
func Window(from, to time.Time) slog.Attr {
	return slog.Group(
		"window",
		slog.Time("from", from),
		slog.Time("to", to),
	)
}
