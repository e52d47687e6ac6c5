// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"log/slog"

	"github.com/momeni/fleetsync/pkg/adapter/config/settings"
	"github.com/momeni/fleetsync/pkg/adapter/scheduler"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/robfig/cron/v3"
)

// Scheduler contains the periodic triggers of the sync tasks.
// A missing tasks list is replaced by DefaultTasks, while an empty
// list disables all triggers.
type Scheduler struct {
	Enabled *bool
	Tasks   []ScheduledTask
}

// ScheduledTask runs Task whenever the Cron expression fires.
// A missing Enabled flag is taken as true.
type ScheduledTask struct {
	Task    model.Task
	Cron    string
	Enabled *bool
}

// DefaultTasks returns the default triggers: work rules hourly,
// drivers, orders, and transactions every 30 minutes, cars every 45
// minutes, and the transaction categories daily.
func DefaultTasks() []ScheduledTask {
	ts := []ScheduledTask{
		{Task: model.TaskWorkRules, Cron: "@hourly"},
		{Task: model.TaskDrivers, Cron: "@every 30m"},
		{Task: model.TaskCars, Cron: "@every 45m"},
		{Task: model.TaskOrders, Cron: "@every 30m"},
		{Task: model.TaskTransactions, Cron: "@every 30m"},
		{Task: model.TaskCategories, Cron: "@daily"},
	}
	for i := range ts {
		ts[i].Enabled = enabled(true)
	}
	return ts
}

func enabled(b bool) *bool {
	return &b
}

// ValidateAndNormalize rejects the duplicated tasks and unparseable
// cron expressions.
func (s *Scheduler) ValidateAndNormalize() error {
	if s.Enabled == nil {
		s.Enabled = enabled(true)
	}
	if s.Tasks == nil {
		s.Tasks = DefaultTasks()
	}
	seen := make(map[model.Task]int, len(s.Tasks))
	for i := range s.Tasks {
		if s.Tasks[i].Enabled == nil {
			s.Tasks[i].Enabled = enabled(true)
		}
		st := s.Tasks[i]
		if err := st.Task.Validate(); err != nil {
			return fmt.Errorf("tasks[%d]: %w", i, err)
		}
		if j, ok := seen[st.Task]; ok {
			return fmt.Errorf(
				"tasks[%d]: %s task is already scheduled by tasks[%d]",
				i, st.Task, j,
			)
		}
		seen[st.Task] = i
		if _, err := cron.ParseStandard(st.Cron); err != nil {
			return fmt.Errorf("tasks[%d]: parsing cron: %w", i, err)
		}
	}
	return nil
}

// NewScheduler instantiates a scheduler which runs the enabled tasks
// using r. It returns nil if the scheduler is disabled.
func (s Scheduler) NewScheduler(
	r scheduler.Runner, l *slog.Logger,
) (*scheduler.Scheduler, error) {
	settings.Nil2Zero(&s.Enabled)
	if !*s.Enabled {
		return nil, nil
	}
	entries := make([]scheduler.Entry, 0, len(s.Tasks))
	for _, st := range s.Tasks {
		if st.Enabled != nil && !*st.Enabled {
			continue
		}
		entries = append(entries, scheduler.Entry{Task: st.Task, Spec: st.Cron})
	}
	return scheduler.New(r, entries, l)
}
