// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := model.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, model.Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, "2024-02-29", d.String())

	d, err = model.ParseDate("2024-03-01T23:30:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d.String(), "keeps the local date")

	_, err = model.ParseDate("01/03/2024")
	assert.Error(t, err)

	var z model.Date
	require.NoError(t, z.UnmarshalText(nil))
	assert.True(t, z.IsZero())
	assert.Equal(t, "", z.String())
}

func TestDateArithmetic(t *testing.T) {
	d := model.Date{Year: 2024, Month: time.February, Day: 28}
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2023-12-31", d.AddDays(-59).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Zero(t, d.Compare(d))
	assert.Equal(t, 1, d.Compare(model.Date{Year: 2023, Month: 12, Day: 31}))
}

func TestDateWindowIsAnchoredPerZone(t *testing.T) {
	moscow, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	d := model.Date{Year: 2024, Month: time.May, Day: 5}
	w := d.Window()
	assert.True(t, w.Floating)

	aw := w.Anchor(moscow)
	assert.False(t, aw.Floating)
	assert.Equal(t, time.Date(2024, 5, 5, 0, 0, 0, 0, moscow), aw.From)
	assert.Equal(t, time.Date(2024, 5, 5, 23, 59, 59, 0, moscow), aw.To)
}

func TestTrailingWindow(t *testing.T) {
	now := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)
	moscow, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	w := model.TrailingWindow(now, 2*time.Hour, moscow)
	assert.Equal(t, moscow, w.To.Location())
	assert.True(t, w.To.Equal(now))
	assert.True(t, w.From.Equal(now.Add(-2*time.Hour)))
	assert.Equal(t, 13, w.From.Hour(), "expressed in the park zone")
}

func TestParseWindow(t *testing.T) {
	w, err := model.ParseWindow("", "")
	require.NoError(t, err)
	assert.Nil(t, w, "default trailing window")

	_, err = model.ParseWindow("2024-05-01", "")
	assert.ErrorIs(t, err, model.ErrHalfWindow)

	w, err = model.ParseWindow("2024-05-01", "2024-05-02")
	require.NoError(t, err)
	assert.True(t, w.Floating)
	assert.Equal(t, time.Date(2024, 5, 2, 23, 59, 59, 0, time.UTC), w.To)

	w, err = model.ParseWindow(
		"2024-05-01T10:00:00+03:00", "2024-05-01T12:00:00+03:00",
	)
	require.NoError(t, err)
	assert.False(t, w.Floating)
	assert.Equal(t, 2*time.Hour, w.To.Sub(w.From))

	_, err = model.ParseWindow("2024-05-01T10:00:00+03:00", "2024-05-02")
	assert.Error(t, err, "mixed boundaries")

	_, err = model.ParseWindow("2024-05-02", "2024-05-01T00:00:00")
	assert.ErrorIs(t, err, model.ErrEmptyWindow)
}

func TestTaskNames(t *testing.T) {
	for _, task := range model.Tasks {
		parsed, err := model.ParseTask(task.String())
		require.NoError(t, err)
		assert.Equal(t, task, parsed)
	}
	_, err := model.ParseTask("invoices")
	assert.ErrorIs(t, err, model.ErrUnknownTask)

	var te model.TaskError
	assert.True(t, errors.As(model.TaskInvalid.Validate(), &te))
	assert.True(t, model.TaskOrders.Windowed())
	assert.False(t, model.TaskDrivers.Windowed())
	assert.Equal(t, "transaction-categories", model.TaskCategories.String())
}

func TestSyncReport(t *testing.T) {
	r := &model.SyncReport{Task: model.TaskTransactions}
	assert.Equal(t, model.RunSucceeded, r.Status(), "no parks")

	ok := model.ParkResult{Park: "b", Upserted: 10}
	ok.Skip(model.SkipMissingOrder, 2)
	ok.Skip(model.SkipMissingDriver, 0)
	r.Add(ok)
	r.Add(model.ParkResult{Park: "a", Err: errors.New("boom")})
	r.Sort()

	assert.Equal(t, "a", r.Parks[0].Park)
	assert.Equal(t, model.RunPartial, r.Status())
	assert.Equal(t, 10, r.Upserted())
	assert.Equal(t, map[model.SkipReason]int{model.SkipMissingOrder: 2}, r.Skipped())
	assert.ErrorContains(t, r.Err(), "park a: boom")

	run := model.NewSyncRun(r)
	assert.Equal(t, model.TaskTransactions, run.Task)
	assert.Equal(t, 2, run.Parks)
	assert.Equal(t, 2, run.Skipped)
	assert.Equal(t, model.RunPartial, run.Status)
	assert.Contains(t, run.Message, "boom")

	r.Parks = r.Parks[:1]
	assert.Equal(t, model.RunFailed, r.Status())
}

func TestBackfillStatus(t *testing.T) {
	to := model.Date{Year: 2024, Month: time.May, Day: 5}
	s := model.NewBackfillStatus("daily", nil, to)
	assert.Equal(t, model.BackfillNotStarted, s.State)

	w := &model.Watermark{Job: "daily", Date: to.AddDays(-2)}
	s = model.NewBackfillStatus("daily", w, to)
	assert.Equal(t, model.BackfillInProgress, s.State)
	assert.Equal(t, to.AddDays(-1), s.Next)

	w.Date = to
	s = model.NewBackfillStatus("daily", w, to)
	assert.Equal(t, model.BackfillCompleted, s.State)
	assert.True(t, s.Next.IsZero())
}

func TestPaymentStatus(t *testing.T) {
	for _, s := range []model.PaymentStatus{
		model.PaymentInProgress, model.PaymentSucceeded, model.PaymentFailed,
	} {
		parsed, err := model.ParsePaymentStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	assert.False(t, model.PaymentInProgress.Final())
	assert.True(t, model.PaymentFailed.Final())
	_, err := model.ParsePaymentStatus("pending")
	assert.ErrorIs(t, err, model.ErrUnknownPaymentStatus)
}
