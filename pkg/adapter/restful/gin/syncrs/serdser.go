// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncrs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/fleetsync/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/fleetsync/pkg/core/model"
)

// DefaultRunsLimit is the number of runs which are listed when the
// limit query parameter is missing.
const DefaultRunsLimit = 20

type taskURI struct {
	Task string `uri:"task" binding:"required"`
}

type windowQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type runReq struct {
	Task   model.Task
	Window *model.Window
}

func badRequest(c *gin.Context, name, msg string) {
	var errs map[string][]string
	serdser.AddErr(&errs, name, msg)
	c.JSON(http.StatusBadRequest, errs)
}

func dserRunReq(c *gin.Context) *runReq {
	uri := &taskURI{}
	if !serdser.BindURI(c, uri) {
		return nil
	}
	q := &windowQuery{}
	if !serdser.Bind(c, q, binding.Query) {
		return nil
	}
	task, err := model.ParseTask(uri.Task)
	if err != nil {
		badRequest(c, "task", err.Error())
		return nil
	}
	w, err := model.ParseWindow(q.From, q.To)
	if err != nil {
		badRequest(c, "from/to", err.Error())
		return nil
	}
	return &runReq{Task: task, Window: w}
}

type runsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// dserRunsReq returns zero if the response is already written.
func dserRunsReq(c *gin.Context) int {
	q := &runsQuery{}
	if !serdser.Bind(c, q, binding.Query) {
		return 0
	}
	if q.Limit == 0 {
		return DefaultRunsLimit
	}
	return q.Limit
}

type jobURI struct {
	Job string `uri:"job" binding:"required"`
}

type backfillReq struct {
	Job      string
	From, To model.Date
}

// dserBackfillReq parses the job and its date range. The to date
// defaults to the today date and from defaults to to.
func dserBackfillReq(c *gin.Context, now time.Time) *backfillReq {
	uri := &jobURI{}
	if !serdser.BindURI(c, uri) {
		return nil
	}
	q := &windowQuery{}
	if !serdser.Bind(c, q, binding.Query) {
		return nil
	}
	req := &backfillReq{Job: uri.Job, To: model.DateOf(now)}
	var err error
	if q.To != "" {
		if req.To, err = model.ParseDate(q.To); err != nil {
			badRequest(c, "to", err.Error())
			return nil
		}
	}
	req.From = req.To
	if q.From != "" {
		if req.From, err = model.ParseDate(q.From); err != nil {
			badRequest(c, "from", err.Error())
			return nil
		}
	}
	return req
}

type runResp struct {
	ID         int64     `json:"id"`
	Task       string    `json:"task"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	Parks      int       `json:"parks"`
	Upserted   int       `json:"upserted"`
	Skipped    int       `json:"skipped"`
	Message    string    `json:"message,omitempty"`
}

func serRun(r *model.SyncRun) runResp {
	return runResp{
		ID:         r.ID,
		Task:       r.Task.String(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Status:     string(r.Status),
		Parks:      r.Parks,
		Upserted:   r.Upserted,
		Skipped:    r.Skipped,
		Message:    r.Message,
	}
}

type backfillResp struct {
	Job       string `json:"job"`
	State     string `json:"state"`
	Watermark string `json:"watermark,omitempty"`
	Next      string `json:"next,omitempty"`
}

func serBackfillStatus(s model.BackfillStatus) backfillResp {
	resp := backfillResp{Job: s.Job, State: string(s.State)}
	if !s.Watermark.IsZero() {
		resp.Watermark = s.Watermark.String()
	}
	if !s.Next.IsZero() {
		resp.Next = s.Next.String()
	}
	return resp
}
