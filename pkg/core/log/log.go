// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log wraps the standard log/slog package for the sync engine.
// Functions of this package take a context, a message, and a series
// of statically typed slog.Attr arguments, so hot paths such as the
// per-page reconciliation loop avoid the interleaved key/value "any"
// arguments of slog.Info and friends. Records are attributed to the
// caller of Debug, Info, Warn, or Error (not to this package).
//
// The helpers in attrs.go prepare the attributes which are repeated in
// most log entries, such as the park which is being synchronized or the
// sync task name.
package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Debug logs msg and attrs with the given context at the debug level.
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelDebug, msg, attrs)
}

// Info logs msg and attrs with the given context at the info level.
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

// Warn logs msg and attrs with the given context at the warning level.
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

// Error logs msg and attrs with the given context at the error level.
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

// Setup installs a text or JSON handler writing to w as the default
// slog logger, filtering records below the given level. The format
// argument may be "json" or "text"; other values fall back to text.
// It returns the installed logger so that libraries which accept an
// explicit *slog.Logger (such as the supervisor hook) can share it.
func Setup(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true, Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// emit must be called directly by the exported level functions since
// it skips exactly two frames (itself and its caller) when looking for
// the source location.
func emit(
	ctx context.Context,
	level slog.Level,
	msg string,
	attrs []slog.Attr,
) {
	l := slog.Default()
	if !l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // [Callers, emit, Info/Warn/...]
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
