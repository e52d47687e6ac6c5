// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// Task enumerates the sync routines which may be triggered by the
// scheduler, the command line, or the REST API. It is numeric, but it
// is (de)serialized as a string in config files and requests.
type Task int

// Valid values for the Task enum.
const (
	TaskInvalid Task = iota // zero value is invalid

	TaskWorkRules
	TaskCars
	TaskDrivers
	TaskOrders
	TaskTransactions
	TaskCategories
)

// Tasks lists all valid tasks in the order of their dependencies.
// Syncing them in this order resolves the most references.
var Tasks = []Task{
	TaskWorkRules,
	TaskCars,
	TaskDrivers,
	TaskOrders,
	TaskTransactions,
	TaskCategories,
}

// ErrUnknownTask indicates that a string may not be parsed as a task.
var ErrUnknownTask = errors.New("unknown task")

// TaskError indicates an invalid Task value.
type TaskError int

// Error implements the error interface.
func (e TaskError) Error() string {
	return fmt.Sprintf("invalid task: %d", e)
}

// Validate returns nil if t is valid and a TaskError otherwise.
func (t Task) Validate() error {
	if t < TaskWorkRules || t > TaskCategories {
		return TaskError(t)
	}
	return nil
}

// Windowed reports whether t accepts a fetch window.
func (t Task) Windowed() bool {
	return t == TaskOrders
}

// String returns the name of t. Invalid tasks cause a panic.
func (t Task) String() string {
	switch t {
	case TaskWorkRules:
		return "work-rules"
	case TaskCars:
		return "cars"
	case TaskDrivers:
		return "drivers"
	case TaskOrders:
		return "orders"
	case TaskTransactions:
		return "transactions"
	case TaskCategories:
		return "transaction-categories"
	default:
		panic(TaskError(t))
	}
}

// MarshalText implements the encoding.TextMarshaler interface.
func (t Task) MarshalText() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *Task) UnmarshalText(text []byte) error {
	tt, err := ParseTask(string(text))
	if err != nil {
		return fmt.Errorf("parsing %q: %w", text, err)
	}
	*t = tt
	return nil
}

// ParseTask parses a task name. For unknown names, TaskInvalid and
// ErrUnknownTask are returned.
func ParseTask(s string) (Task, error) {
	for _, t := range Tasks {
		if t.String() == s {
			return t, nil
		}
	}
	return TaskInvalid, ErrUnknownTask
}
