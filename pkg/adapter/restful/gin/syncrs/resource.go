// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package syncrs realizes the sync resource which triggers the sync
// routines and reports their audit records and backfill progress.
package syncrs

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/momeni/fleetsync/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/usecase/syncuc"
)

type resource struct {
	sync *syncuc.UseCase
	now  func() time.Time
}

// Register instantiates a resource adapting the sync use case instance
// with the relevant REST APIs including:
//  1. POST /sync/:task?from=&to= which runs a task synchronously and
//     returns a {status, message} envelope,
//  2. GET /sync/runs?limit= which lists the recent runs,
//  3. POST /backfill/:job?from=&to= which runs a resumable backfill,
//  4. GET /backfill/:job?to= which reports the progress of a backfill.
func Register(r *gin.RouterGroup, sync *syncuc.UseCase) {
	rs := &resource{sync: sync, now: time.Now}
	r.POST("sync/:task", rs.Run)
	r.GET("sync/runs", rs.Runs)
	r.POST("backfill/:job", rs.Backfill)
	r.GET("backfill/:job", rs.BackfillStatus)
}

func (rs *resource) Run(c *gin.Context) {
	req := dserRunReq(c)
	if req == nil {
		return
	}
	report, err := rs.sync.Run(c, req.Task, req.Window)
	if err != nil {
		serdser.SerEnvelope(c, err)
		return
	}
	c.JSON(http.StatusOK, serdser.Envelope{
		Status:  string(report.Status()),
		Message: summary(report),
	})
}

func summary(r *model.SyncReport) string {
	skipped := 0
	for _, n := range r.Skipped() {
		skipped += n
	}
	msg := fmt.Sprintf(
		"%s: %d parks, %d upserted, %d skipped",
		r.Task, len(r.Parks), r.Upserted(), skipped,
	)
	failed := 0
	for _, pr := range r.Parks {
		if pr.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		msg += fmt.Sprintf(", %d failed", failed)
	}
	return msg
}

func (rs *resource) Runs(c *gin.Context) {
	limit := dserRunsReq(c)
	if limit == 0 {
		return
	}
	runs, err := rs.sync.Runs(c, limit)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	resp := make([]runResp, len(runs))
	for i := range runs {
		resp[i] = serRun(&runs[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (rs *resource) Backfill(c *gin.Context) {
	req := dserBackfillReq(c, rs.now())
	if req == nil {
		return
	}
	st, err := rs.sync.Backfill(c, req.Job, req.From, req.To)
	if err != nil {
		serdser.SerEnvelope(c, err)
		return
	}
	c.JSON(http.StatusOK, serdser.Envelope{
		Status:  string(st.State),
		Message: fmt.Sprintf("%s: completed up to %s", st.Job, st.Watermark),
	})
}

func (rs *resource) BackfillStatus(c *gin.Context) {
	req := dserBackfillReq(c, rs.now())
	if req == nil {
		return
	}
	st, err := rs.sync.BackfillStatus(c, req.Job, req.To)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serBackfillStatus(st))
}
