// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package parksuc contains the parks UseCase which lets administrators
// register and update the parks whose data is synchronized, and issue
// payments to the balances of their drivers.
package parksuc

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/repo"
)

// UseCase represents the parks use case.
type UseCase struct {
	pool    repo.Pool
	parksrp repo.Parks
	api     fleet.API
}

// New instantiates a parks use case.
func New(p repo.Pool, r repo.Parks, api fleet.API) *UseCase {
	return &UseCase{pool: p, parksrp: r, api: api}
}

// List returns all registered parks.
func (uc *UseCase) List(ctx context.Context) (parks []model.Park, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		parks, err = uc.parksrp.Conn(c).List(ctx, false)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing parks: %w", err)
	}
	return parks, nil
}

// Get returns the park with the externalID or a not found error.
func (uc *UseCase) Get(ctx context.Context, externalID string) (p *model.Park, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		p, err = uc.parksrp.Conn(c).ByExternalID(ctx, externalID)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, cerr.NotFound(fmt.Errorf("park %q: %w", externalID, err))
	}
	if err != nil {
		return nil, fmt.Errorf("loading park %q: %w", externalID, err)
	}
	return p, nil
}

// Register validates the credentials of p against the fleet API and
// stores it. The name and city of p are filled from the fleet API if
// they are left empty.
func (uc *UseCase) Register(ctx context.Context, p *model.Park) (*model.Park, error) {
	if err := uc.verify(ctx, p); err != nil {
		return nil, err
	}
	var created *model.Park
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		q := uc.parksrp.Conn(c)
		if _, err := q.ByExternalID(ctx, p.ExternalID); err == nil {
			return cerr.Conflict(fmt.Errorf("park %q is already registered", p.ExternalID))
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		var err error
		created, err = q.Create(ctx, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("registering park %q: %w", p.ExternalID, err)
	}
	log.Info(ctx, "park is registered", log.Valuer("park", created))
	return created, nil
}

// Update overwrites the stored park which has the same external id
// as p. Credentials are verified again only for active parks, so an
// administrator may deactivate a park whose credentials are revoked.
func (uc *UseCase) Update(ctx context.Context, p *model.Park) (*model.Park, error) {
	if p.IsActive {
		if err := uc.verify(ctx, p); err != nil {
			return nil, err
		}
	}
	var updated *model.Park
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) (err error) {
		updated, err = uc.parksrp.Conn(c).Update(ctx, p)
		return err
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, cerr.NotFound(fmt.Errorf("park %q: %w", p.ExternalID, err))
	}
	if err != nil {
		return nil, fmt.Errorf("updating park %q: %w", p.ExternalID, err)
	}
	return updated, nil
}

// verify checks the credentials of p locally and then by fetching the
// park info, which also fills the empty name and city of p.
func (uc *UseCase) verify(ctx context.Context, p *model.Park) error {
	if _, err := p.Location(nil); err != nil {
		return cerr.BadRequest(err)
	}
	creds := fleet.CredentialsOf(p)
	if err := creds.Validate(); err != nil {
		return cerr.BadRequest(err)
	}
	info, err := uc.api.ParkInfo(ctx, creds)
	if err != nil {
		return apiError(fmt.Errorf("fetching park info: %w", err))
	}
	if p.Name == "" {
		p.Name = info.Name
	}
	if p.City == "" {
		p.City = info.City
	}
	return nil
}

// apiError maps the fleet API failures to the relevant cerr errors.
func apiError(err error) error {
	var se *fleet.StatusError
	switch {
	case errors.As(err, &se):
		return cerr.Unprocessable(err)
	case errors.Is(err, fleet.ErrRateLimited), errors.Is(err, fleet.ErrUnavailable):
		return cerr.Unavailable(err)
	default:
		return err
	}
}
