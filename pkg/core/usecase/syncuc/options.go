// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package syncuc

import (
	"errors"
	"fmt"
	"time"
)

// Defaults of the optional settings.
const (
	DefaultTimeZone       = "Europe/Moscow"
	DefaultTrailingWindow = 2 * time.Hour
	DefaultBatchSize      = 100
)

// Option is a functional option for the sync use case.
type Option func(uc *UseCase) error

// WithClock replaces time.Now as the source of the current time,
// which is used for computing the default trailing window.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		uc.now = now
		return nil
	}
}

// WithDefaultLocation sets the time zone of the parks which have no
// configured zone. It defaults to DefaultTimeZone.
func WithDefaultLocation(loc *time.Location) Option {
	return func(uc *UseCase) error {
		if loc == nil {
			return errors.New("location is nil")
		}
		if uc.defaultLoc != nil {
			return errors.New("default location is already configured")
		}
		uc.defaultLoc = loc
		return nil
	}
}

// WithTrailingWindow sets the length of the default window of the
// orders task. It defaults to DefaultTrailingWindow.
func WithTrailingWindow(d time.Duration) Option {
	return func(uc *UseCase) error {
		if d <= 0 {
			return fmt.Errorf("trailing window (%s) is not positive", d)
		}
		uc.trailing = d
		return nil
	}
}

// WithWorkers sets how many parks may be processed concurrently.
// It defaults to one, i.e., parks are processed sequentially.
func WithWorkers(n int) Option {
	return func(uc *UseCase) error {
		if n <= 0 {
			return fmt.Errorf("workers (%d) is not positive", n)
		}
		uc.workers = n
		return nil
	}
}

// WithBatchSize sets how many orders are passed to one transactions
// list request. It defaults to DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(uc *UseCase) error {
		if n <= 0 {
			return fmt.Errorf("batch size (%d) is not positive", n)
		}
		uc.batchSize = n
		return nil
	}
}

// WithObserver registers o for the progress notifications.
func WithObserver(o Observer) Option {
	return func(uc *UseCase) error {
		if o == nil {
			return errors.New("observer is nil")
		}
		uc.observer = o
		return nil
	}
}
