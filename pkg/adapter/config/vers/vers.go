// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers holds the versions section of the config file, which
// reports the format version of the config file itself and the schema
// version of its target database.
package vers

import (
	"fmt"

	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/model"
)

// Config is embedded (inline) in the top-level config struct.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions lists the config file and database schema versions.
type Versions struct {
	Database model.SemVer `yaml:"database"`
	Config   model.SemVer `yaml:"config"`
}

// Validate checks that the config file format may be loaded by an
// implementation which supports the major.minor version. Missing
// versions (all zero) are filled with the cfg and db versions.
func (vc *Config) Validate(cfg, db model.SemVer) error {
	if vc.Versions.Config == (model.SemVer{}) {
		vc.Versions.Config = cfg
	}
	if vc.Versions.Database == (model.SemVer{}) {
		vc.Versions.Database = db
	}
	if !cfg.Supports(vc.Versions.Config) {
		return fmt.Errorf(
			"config format: %w",
			&cerr.MismatchingSemVerError{cfg, vc.Versions.Config},
		)
	}
	if !db.Supports(vc.Versions.Database) {
		return fmt.Errorf(
			"database schema: %w",
			&cerr.MismatchingSemVerError{db, vc.Versions.Database},
		)
	}
	return nil
}
