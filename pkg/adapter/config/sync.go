// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/config/settings"
	"github.com/momeni/fleetsync/pkg/adapter/metrics"
	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/repo"
	"github.com/momeni/fleetsync/pkg/core/usecase/syncuc"
)

// Sync contains the configuration settings of the sync use case.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized. Missing items take the syncuc defaults.
type Sync struct {
	// TimeZone is the IANA zone of the parks which have no zone.
	TimeZone *string `yaml:"time-zone"`

	// TrailingWindow is the length of the default orders window.
	TrailingWindow *settings.Duration `yaml:"trailing-window"`

	// Workers is the number of parks which are processed concurrently.
	Workers *int `yaml:"workers"`
	// MaxWorkers is the inclusive upper bound of Workers.
	// A missing value indicates that there is no upper bound.
	MaxWorkers *int `yaml:"workers-maximum"`

	// BatchSize is the number of orders per transactions request.
	BatchSize *int `yaml:"batch-size"`

	loc *time.Location
}

// ValidateAndNormalize loads the time zone and clamps Workers into
// [1, MaxWorkers]. A clamped Workers value is reported as an error.
func (s *Sync) ValidateAndNormalize() error {
	if s.TimeZone != nil {
		loc, err := time.LoadLocation(*s.TimeZone)
		if err != nil {
			return fmt.Errorf("loading time-zone: %w", err)
		}
		s.loc = loc
	}
	if s.TrailingWindow != nil && *s.TrailingWindow <= 0 {
		return fmt.Errorf(
			"trailing-window (%v) is not positive",
			time.Duration(*s.TrailingWindow),
		)
	}
	minWorkers := 1
	if err := settings.Clamp(s.Workers, &minWorkers, s.MaxWorkers); err != nil {
		return fmt.Errorf("workers: %w", err)
	}
	if s.BatchSize != nil && *s.BatchSize <= 0 {
		return fmt.Errorf("batch-size (%d) is not positive", *s.BatchSize)
	}
	return nil
}

// NewSyncUseCase instantiates a new sync use case based on the
// settings in the s struct. The Prometheus observer is always set.
func (s Sync) NewSyncUseCase(
	p repo.Pool, r repo.Repos, api fleet.API,
) (*syncuc.UseCase, error) {
	opts := make([]syncuc.Option, 0, 5)
	opts = append(opts, syncuc.WithObserver(metrics.SyncObserver{}))
	if s.loc != nil {
		opts = append(opts, syncuc.WithDefaultLocation(s.loc))
	}
	if s.TrailingWindow != nil {
		d := time.Duration(*s.TrailingWindow)
		opts = append(opts, syncuc.WithTrailingWindow(d))
	}
	if s.Workers != nil {
		opts = append(opts, syncuc.WithWorkers(*s.Workers))
	}
	if s.BatchSize != nil {
		opts = append(opts, syncuc.WithBatchSize(*s.BatchSize))
	}
	return syncuc.New(p, r, api, opts...)
}
