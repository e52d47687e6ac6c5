// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"log/slog"

	"github.com/momeni/fleetsync/pkg/adapter/config/settings"
	"github.com/momeni/fleetsync/pkg/adapter/restful/gin"
)

// DefaultListen is the default listening address of the REST API.
const DefaultListen = "127.0.0.1:8080"

// Gin contains the gin-gonic related configuration settings.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized.
type Gin struct {
	Logger   *bool  // Whether to register the request logger middleware
	Recovery *bool  // Whether to register the recovery middleware
	Listen   string // host:port address of the HTTP server
}

func (g *Gin) normalize() {
	settings.Nil2Zero(&g.Logger)
	settings.Nil2Zero(&g.Recovery)
	if g.Listen == "" {
		g.Listen = DefaultListen
	}
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings. The middlewares log using the l logger.
func (g Gin) NewEngine(l *slog.Logger) *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 2)
	if g.Logger != nil && *g.Logger {
		middlewares = append(middlewares, gin.Logger(l))
	}
	if g.Recovery != nil && *g.Recovery {
		middlewares = append(middlewares, gin.Recovery(l))
	}
	return gin.New(middlewares...)
}
