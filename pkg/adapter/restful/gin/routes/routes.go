// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes registers all resource packages on a gin-gonic
// engine. Each resource package is named like parksrs and adapts one
// use case, like parksuc, with the REST APIs.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/momeni/fleetsync/pkg/adapter/restful/gin/parksrs"
	"github.com/momeni/fleetsync/pkg/adapter/restful/gin/syncrs"
	"github.com/momeni/fleetsync/pkg/core/usecase/parksuc"
	"github.com/momeni/fleetsync/pkg/core/usecase/syncuc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prefix is the path prefix of all fleetsync REST APIs.
const Prefix = "/api/fleetsync/v1"

// Register registers the parks and sync resources under Prefix and
// the Prometheus collectors of the default registry as /metrics.
func Register(
	e *gin.Engine, parks *parksuc.UseCase, sync *syncuc.UseCase,
) {
	r := e.Group(Prefix)
	parksrs.Register(r, parks)
	syncrs.Register(r, sync)
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
