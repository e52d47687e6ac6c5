// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the fleetsync to instantiate
// different components, from the adapter or use cases layers, using
// those loaded configuration settings.
// The parsed and validated configurations are passed to their ultimate
// components as a series of individual params (for the mandatory items)
// and a series of functional options (for the optional items), so they
// are validated again by the end-component such as a UseCase instance.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/momeni/fleetsync/pkg/adapter/config/vers"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/migration"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
	"gopkg.in/yaml.v3"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// IntegratorAPIKeyEnv names the environment variable which overrides
// the fleet-api.integrator-api-key setting, so the secret does not
// have to be written in the config file.
const IntegratorAPIKeyEnv = "FLEETSYNC_INTEGRATOR_API_KEY"

// Config contains all settings which are required by different parts
// of the project, such as adapters or use cases. It is preferred to
// implement Config with primitive fields or other structs which are
// defined locally, not models or structs which are defined in lower
// layers, so the configuration format can be kept intact while other
// layers change freely.
type Config struct {
	Database  Database  // PostgreSQL database connection settings
	Gin       Gin       // Gin-Gonic instantiation settings
	FleetAPI  FleetAPI  `yaml:"fleet-api"` // remote fleet API client
	Sync      Sync      // sync use case settings
	Scheduler Scheduler // periodic triggers of the sync tasks
	Log       Log       // structured logging settings

	// Vers contains the configuration file and database schema version
	// strings corresponding to this Config instance and its Database
	// target.
	Vers vers.Config `yaml:",inline"`
}

// LoadFile reads the path file and loads it using Load.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return c, nil
}

// Load unmarshals the data byte slice and loads a Config instance.
// Extra items in the data will be ignored and missing items will take
// their default values. Secrets are overridden by their environment
// variables (if set) and thereafter, the loaded Config is validated
// and normalized.
func Load(data []byte) (*Config, error) {
	n := &yaml.Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if l := len(n.Content); l != 1 {
		return nil, fmt.Errorf(
			"found %d children nodes, instead of 1 mapping child", l,
		)
	}
	c := &Config{}
	if err := n.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding yaml node: %w", err)
	}
	if k, ok := os.LookupEnv(IntegratorAPIKeyEnv); ok {
		c.FleetAPI.IntegratorAPIKey = k
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values with
// their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if err := c.Vers.Validate(Version, postgres.Version); err != nil {
		return fmt.Errorf(
			"expecting version v%d.%d: %w", Major, Minor, err,
		)
	}
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	c.Gin.normalize()
	if err := c.FleetAPI.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating fleet-api settings: %w", err)
	}
	if err := c.Sync.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating sync settings: %w", err)
	}
	if err := c.Scheduler.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating scheduler settings: %w", err)
	}
	if err := c.Log.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating log settings: %w", err)
	}
	return nil
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `c` settings.
func (c *Config) ConnectionPool(
	ctx context.Context, r repo.Role,
) (repo.Pool, error) {
	p, err := c.Database.ConnectionPool(ctx, r)
	if err != nil {
		return nil, fmt.Errorf(
			"%s@%s:%d/%s: %w",
			r, c.Database.Host, c.Database.Port, c.Database.Name, err,
		)
	}
	return p, nil
}

// NewSchemaRepo instantiates a fresh Schema repository.
// Role names may be optionally suffixed based on the settings and
// in that case, repo.Role role names which are passed to the
// ConnectionPool method or RenewPasswords will be suffixed
// automatically. Since the Schema repository has methods for
// creation of roles or asking to grant specific privileges to
// them, it needs to obtain the same role name suffix.
func (c *Config) NewSchemaRepo() repo.Schema {
	return c.Database.NewSchemaRepo()
}

// SchemaInitializer creates a repo.SchemaInitializer instance which
// wraps the given transaction argument and can be used to initialize
// the database with development or production suitable data. All
// table creation and data insertion operations will be performed in
// the given transaction and will be persisted only if that transaction
// could commit successfully.
func (c *Config) SchemaInitializer(tx repo.Tx) (
	repo.SchemaInitializer, error,
) {
	return migration.NewInitializer(tx, c.SchemaVersion())
}

// RenewPasswords generates new secure passwords for the given roles
// and after recording them in the .pgpass.new file, uses the change
// function in order to update the passwords of those roles in the
// database too. The returned finalizer moves .pgpass.new over the
// .pgpass file and must be called after change is committed.
func (c *Config) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	return c.Database.RenewPasswords(ctx, change, roles...)
}

// SchemaVersion returns the semantic version of the database schema
// which its connection information are kept by this Config struct.
func (c *Config) SchemaVersion() model.SemVer {
	return c.Vers.Versions.Database
}
