// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/config"
	"github.com/momeni/fleetsync/pkg/adapter/fleetapi"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
database:
  name: fleetsync
  pass-dir: /tmp/fleetsync
`

func TestLoadSampleConfig(t *testing.T) {
	path := filepath.Join("..", "..", "..", "configs", "sample-config.yaml")
	c, err := config.LoadFile(path)
	require.NoError(t, err, "loading %q", path)

	assert.Equal(t, "fleetsync", c.Database.Name)
	assert.Equal(t, 5432, c.Database.Port)
	assert.Equal(t, "scram-sha-256", c.Database.AuthMethod)
	assert.Equal(t, "127.0.0.1:8080", c.Gin.Listen)
	require.NotNil(t, c.Gin.Logger)
	assert.True(t, *c.Gin.Logger)

	cc := c.FleetAPI.ClientConfig()
	assert.Equal(t, "ru", cc.Language)
	assert.Equal(t, 30*time.Second, cc.Timeout)
	assert.Equal(t, 5, cc.MaxAttempts)
	assert.Equal(t, time.Second, cc.BackoffBase)
	assert.Equal(t, 3, cc.PaymentRetries)

	require.NotNil(t, c.Sync.Workers)
	assert.Equal(t, 1, *c.Sync.Workers)
	require.NotNil(t, c.Sync.TrailingWindow)
	assert.Equal(t, 2*time.Hour, time.Duration(*c.Sync.TrailingWindow))

	require.NotNil(t, c.Scheduler.Enabled)
	assert.True(t, *c.Scheduler.Enabled)
	assert.Equal(t, config.DefaultTasks(), c.Scheduler.Tasks)

	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, postgres.Version, c.SchemaVersion())
	assert.Equal(t, config.Version, c.Vers.Versions.Config)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(config.IntegratorAPIKeyEnv, "")
	c, err := config.Load([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", c.Database.Host)
	assert.Equal(t, config.DefaultListen, c.Gin.Listen)
	require.NotNil(t, c.Gin.Recovery)
	assert.False(t, *c.Gin.Recovery)

	cc := c.FleetAPI.ClientConfig()
	assert.Equal(t, fleetapi.DefaultBaseURL, cc.BaseURL)
	assert.Zero(t, cc.Timeout, "left for the client default")

	assert.Nil(t, c.Sync.Workers)
	assert.Equal(t, config.DefaultTasks(), c.Scheduler.Tasks)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, postgres.Version, c.SchemaVersion())
}

func TestLoadIntegratorKeyFromEnv(t *testing.T) {
	t.Setenv(config.IntegratorAPIKeyEnv, "from-env")
	c, err := config.Load([]byte(minimal + `
fleet-api:
  integrator-api-key: from-file
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.FleetAPI.IntegratorAPIKey)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	for name, extra := range map[string]string{
		"major config version": `
versions:
  config: 2.0.0
`,
		"base url scheme": `
fleet-api:
  base-url: ftp://example.com
`,
		"negative attempts": `
fleet-api:
  max-attempts: -1
`,
		"time zone": `
sync:
  time-zone: Mars/Olympus
`,
		"trailing window": `
sync:
  trailing-window: -1h
`,
		"workers": `
sync:
  workers: 0
`,
		"duplicated task": `
scheduler:
  tasks:
    - task: orders
      cron: "@hourly"
    - task: orders
      cron: "@daily"
`,
		"unknown task": `
scheduler:
  tasks:
    - task: invoices
      cron: "@hourly"
`,
		"cron": `
scheduler:
  tasks:
    - task: cars
      cron: "every now and then"
`,
		"log format": `
log:
  format: xml
`,
		"log level": `
log:
  level: loud
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load([]byte(minimal + extra))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsAuthMethod(t *testing.T) {
	_, err := config.Load([]byte(`
database:
  name: fleetsync
  auth-method: md5
`))
	assert.ErrorContains(t, err, "md5")
}

func TestLoadReportsVersionMismatch(t *testing.T) {
	_, err := config.Load([]byte(minimal + `
versions:
  database: 2.0.0
`))
	var msve *cerr.MismatchingSemVerError
	require.True(t, errors.As(err, &msve), "got %v", err)
	assert.Equal(t, model.SemVer{2, 0, 0}, msve[1])
}

func TestWorkersAreClamped(t *testing.T) {
	c, err := config.Load([]byte(minimal + `
sync:
  workers: 4
  workers-maximum: 8
`))
	require.NoError(t, err)
	assert.Equal(t, 4, *c.Sync.Workers)

	_, err = config.Load([]byte(minimal + `
sync:
  workers: 16
  workers-maximum: 8
`))
	assert.ErrorContains(t, err, "greater than the maximum")

	_, err = config.Load([]byte(minimal + `
sync:
  workers: 4
  workers-maximum: 0
`))
	assert.ErrorContains(t, err, "minimum is greater than maximum")
}

func TestDisabledScheduler(t *testing.T) {
	c, err := config.Load([]byte(minimal + `
scheduler:
  enabled: false
`))
	require.NoError(t, err)
	s, err := c.Scheduler.NewScheduler(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestDisabledScheduledTask(t *testing.T) {
	c, err := config.Load([]byte(minimal + `
scheduler:
  tasks:
    - task: orders
      cron: "@every 30m"
      enabled: false
    - task: drivers
      cron: "@every 30m"
`))
	require.NoError(t, err)
	require.Len(t, c.Scheduler.Tasks, 2)
	require.NotNil(t, c.Scheduler.Tasks[0].Enabled)
	assert.False(t, *c.Scheduler.Tasks[0].Enabled)
	require.NotNil(t, c.Scheduler.Tasks[1].Enabled)
	assert.True(t, *c.Scheduler.Tasks[1].Enabled, "enabled by default")

	s, err := c.Scheduler.NewScheduler(nopRunner{}, nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, []model.Task{model.TaskDrivers}, s.Tasks())
}

type nopRunner struct{}

func (nopRunner) Run(
	context.Context, model.Task, *model.Window,
) (*model.SyncReport, error) {
	return &model.SyncReport{}, nil
}
