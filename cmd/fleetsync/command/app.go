// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/momeni/fleetsync/pkg/adapter/config"
	"github.com/momeni/fleetsync/pkg/core/repo"
	"github.com/momeni/fleetsync/pkg/core/usecase/parksuc"
	"github.com/momeni/fleetsync/pkg/core/usecase/syncuc"
)

// app holds the components which are shared by the commands which
// work with the normal role.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   repo.Pool
	parks  *parksuc.UseCase
	sync   *syncuc.UseCase
}

func newApp(ctx context.Context) (*app, error) {
	c, err := config.LoadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.LoadFile(%q): %w", cfgPath, err)
	}
	a := &app{cfg: c, logger: c.Log.Setup(os.Stderr)}
	a.pool, err = c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return nil, fmt.Errorf("creating DB pool: %w", err)
	}
	api, err := c.FleetAPI.NewClient()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating fleet API client: %w", err)
	}
	repos := config.NewRepos()
	a.parks = parksuc.New(a.pool, repos.Parks, api)
	a.sync, err = c.Sync.NewSyncUseCase(a.pool, repos, api)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating sync use case: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.pool.Close(); err != nil {
		a.logger.Warn("closing DB pool", "err", err)
	}
}
