// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scheduler triggers the sync tasks periodically based on
// their cron expressions. A Scheduler is a suture.Service, so it is
// restarted by its supervisor if it fails.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/robfig/cron/v3"
)

// Runner runs a task, such as the *syncuc.UseCase.
type Runner interface {
	Run(
		ctx context.Context, task model.Task, w *model.Window,
	) (*model.SyncReport, error)
}

// Entry asks to run Task whenever its Spec cron expression fires.
// Spec accepts the five standard fields and the @every and @hourly
// like descriptors.
type Entry struct {
	Task model.Task
	Spec string
}

type job struct {
	task     model.Task
	schedule cron.Schedule
}

// Scheduler runs its entries using a cron.Cron instance.
type Scheduler struct {
	runner Runner
	jobs   []job
	logger cron.Logger
}

// New parses the entries and creates a Scheduler. Each task may be
// scheduled at most once, so its runs never overlap.
func New(r Runner, entries []Entry, l *slog.Logger) (*Scheduler, error) {
	if r == nil {
		return nil, errors.New("runner is nil")
	}
	if l == nil {
		l = slog.Default()
	}
	s := &Scheduler{runner: r, logger: cronLogger{l}}
	seen := make(map[model.Task]bool, len(entries))
	for i, e := range entries {
		if err := e.Task.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if seen[e.Task] {
			return nil, fmt.Errorf("entry %d: %s task is duplicated", i, e.Task)
		}
		seen[e.Task] = true
		sch, err := cron.ParseStandard(e.Spec)
		if err != nil {
			return nil, fmt.Errorf("entry %d: parsing %q: %w", i, e.Spec, err)
		}
		s.jobs = append(s.jobs, job{task: e.Task, schedule: sch})
	}
	return s, nil
}

// Tasks lists the scheduled tasks in the order of their entries.
func (s *Scheduler) Tasks() []model.Task {
	ts := make([]model.Task, len(s.jobs))
	for i, j := range s.jobs {
		ts[i] = j.task
	}
	return ts
}

// Serve implements suture.Service. It starts the cron loop, blocks
// until ctx is cancelled, and waits for the running tasks to return.
func (s *Scheduler) Serve(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(s.logger),
		cron.WithChain(cron.Recover(s.logger)),
	)
	for _, j := range s.jobs {
		c.Schedule(j.schedule, s.job(ctx, j.task))
	}
	log.Info(ctx, "scheduler is started", slog.Int("tasks", len(s.jobs)))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	log.Info(ctx, "scheduler is stopped")
	return ctx.Err()
}

// String implements fmt.Stringer, naming the service for suture.
func (s *Scheduler) String() string {
	return "scheduler"
}

// job returns a cron job which runs task with the default window.
// A trigger is skipped while the previous run of task is in progress.
func (s *Scheduler) job(ctx context.Context, task model.Task) cron.Job {
	run := cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		report, err := s.runner.Run(ctx, task, nil)
		switch {
		case err != nil:
			log.Error(ctx, "scheduled sync failed",
				log.Task(task.String()), log.Err("err", err),
			)
		case report != nil:
			log.Info(ctx, "scheduled sync is done",
				log.Task(task.String()), log.Valuer("report", report),
			)
		}
	})
	return cron.NewChain(cron.SkipIfStillRunning(s.logger)).Then(run)
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	l *slog.Logger
}

func (cl cronLogger) Info(msg string, keysAndValues ...any) {
	cl.l.Debug("cron: "+msg, keysAndValues...)
}

func (cl cronLogger) Error(err error, msg string, keysAndValues ...any) {
	cl.l.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
