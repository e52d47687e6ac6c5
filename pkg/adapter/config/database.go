// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/momeni/fleetsync/pkg/adapter/db/postgres"
	"github.com/momeni/fleetsync/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/fleetsync/pkg/adapter/hash/scram"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/momeni/fleetsync/pkg/core/repo"
	scrami "github.com/momeni/fleetsync/pkg/core/scram"
)

// Database contains the database related configuration settings.
// The config file carries no password. Passwords of the roles are
// kept in the .pgpass file of the PassDir directory, with lines like
//
//	host:port:dbname:role:password
type Database struct {
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name
	PassDir string `yaml:"pass-dir"` // path of the passwords dir

	// RoleSuffix is appended to the repo.AdminRole and repo.NormalRole
	// role names, so parallel tests may use distinct roles in the same
	// database cluster.
	RoleSuffix repo.Role `yaml:"role-suffix,omitempty"`

	// AuthMethod is the password hashing method of the database, i.e.,
	// scram-sha-1 or scram-sha-256 (default).
	AuthMethod string `yaml:"auth-method,omitempty"`

	hasher scrami.Hasher
}

// ConnectionPool creates a connection pool for the r role with the
// password which is found in the .pgpass file of d.PassDir.
//
// A previous "db init" command may have changed the passwords and
// failed before moving the .pgpass.new file over the .pgpass file.
// So if the .pgpass passwords are rejected, the .pgpass.new file is
// tried too and it replaces the .pgpass file if it works.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (*postgres.Pool, error) {
	path := filepath.Join(d.PassDir, ".pgpass")
	u, err := d.ConnectionURL(r, path)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", path, err)
	}
	p, err := postgres.NewPool(ctx, u)
	if err == nil {
		return p, nil
	}
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	log.Warn(
		ctx, "cannot connect, trying the renewed pass-file",
		log.Err("err", err), slog.String("path", newPath),
	)
	u, err = d.ConnectionURL(r, newPath)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", newPath, err)
	}
	p, err = postgres.NewPool(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("can use neither pass-file: %w", err)
	}
	if err = os.Rename(newPath, path); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("os.Rename: %w", err)
	}
	return p, nil
}

// ConnectionURL returns the postgresql:// URL of the database for the
// r role (suffixed by d.RoleSuffix), reading its password from the
// path file. Empty and #-commented lines of that file are ignored.
func (d Database) ConnectionURL(r repo.Role, path string) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	r = r + d.RoleSuffix
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, r)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no password line for %q role", r)
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(string(r), pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// NewSchemaRepo instantiates a Schema repository which suffixes the
// role names and hashes their passwords like the database expects.
// ValidateAndNormalize must be called beforehand.
func (d Database) NewSchemaRepo() repo.Schema {
	return schemarp.New(d.RoleSuffix, d.hasher)
}

// RenewPasswords generates random passwords for roles and writes them
// to the .pgpass.new file. Then, it calls change in order to update
// the passwords in the database, usually in a transaction which is
// committed after RenewPasswords returns. The returned finalizer must
// be called after that commit, so it moves .pgpass.new over .pgpass.
func (d Database) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	passwords := make([]string, len(roles))
	lines := make([]string, len(roles))
	b := make([]byte, 16)
	prfx := fmt.Sprintf("%s:%d:%s", d.Host, d.Port, d.Name)
	for i, r := range roles {
		if _, err = rand.Read(b); err != nil {
			return nil, fmt.Errorf("generating password %d: %w", i, err)
		}
		passwords[i] = base64.RawStdEncoding.EncodeToString(b)
		lines[i] = fmt.Sprintf("%s:%s:%s\n", prfx, r+d.RoleSuffix, passwords[i])
	}
	orgPath := filepath.Join(d.PassDir, ".pgpass")
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	err = os.WriteFile(newPath, []byte(strings.Join(lines, "")), 0o600)
	if err != nil {
		return nil, fmt.Errorf("writing %q file: %w", newPath, err)
	}
	if err = change(ctx, roles, passwords); err != nil {
		return nil, fmt.Errorf("passwords change callback: %w", err)
	}
	return func() error {
		return os.Rename(newPath, orgPath)
	}, nil
}

// ValidateAndNormalize checks the settings and creates the hasher of
// the configured AuthMethod.
func (d *Database) ValidateAndNormalize() error {
	if d.Host == "" {
		d.Host = "127.0.0.1"
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.Name == "" {
		return errors.New("database name is empty")
	}
	switch am := d.AuthMethod; am {
	case "scram-sha-1":
		d.hasher = scram.SHA1()
	case "":
		d.AuthMethod = "scram-sha-256"
		fallthrough
	case "scram-sha-256":
		d.hasher = scram.SHA256()
	default:
		return fmt.Errorf(
			"unsupported database authentication method: %q", am,
		)
	}
	return nil
}
