// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine, so its middlewares log with
// the slog logger of fleetsync.
package gin

import (
	"log/slog"

	"github.com/FabienMht/ginslog/logger"
	"github.com/FabienMht/ginslog/recovery"
	"github.com/gin-gonic/gin"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// Logger logs one record per request using l.
func Logger(l *slog.Logger) HandlerFunc {
	return logger.New(l)
}

// Recovery turns panics into 500 responses and logs them using l.
func Recovery(l *slog.Logger) HandlerFunc {
	return recovery.New(l)
}
