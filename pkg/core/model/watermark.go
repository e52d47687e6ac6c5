// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// Watermark is the last date which a backfill job has completed.
// There is at most one watermark per job and it only moves forward.
type Watermark struct {
	Job       string
	Date      Date
	UpdatedAt time.Time
}

// BackfillState is the state of a backfill job relative to the end of
// its requested range.
type BackfillState string

// Valid values for the BackfillState.
const (
	BackfillNotStarted BackfillState = "not-started"
	BackfillInProgress BackfillState = "in-progress"
	BackfillCompleted  BackfillState = "completed"
)

// BackfillStatus describes a backfill job. Next is the date which the
// job will process next and is zero unless State is in-progress.
type BackfillStatus struct {
	Job       string
	State     BackfillState
	Watermark Date
	Next      Date
}

// NewBackfillStatus computes the status of job given its watermark w
// (nil if the job never completed a day) and the last date of the
// requested range.
func NewBackfillStatus(job string, w *Watermark, to Date) BackfillStatus {
	s := BackfillStatus{Job: job, State: BackfillNotStarted}
	if w == nil {
		return s
	}
	s.Watermark = w.Date
	if w.Date.Before(to) {
		s.State = BackfillInProgress
		s.Next = w.Date.AddDays(1)
		return s
	}
	s.State = BackfillCompleted
	return s
}
