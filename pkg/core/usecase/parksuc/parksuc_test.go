// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parksuc_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/momeni/fleetsync/internal/test/memstore"
	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/usecase/parksuc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// infoAPI implements the park info and payment operations of the
// fleet API, embedding a nil fleet.API for the others.
type infoAPI struct {
	fleet.API

	infoErr  error
	payments []model.Payment
}

func (a *infoAPI) ParkInfo(_ context.Context, c fleet.Credentials) (*fleet.ParkInfo, error) {
	if a.infoErr != nil {
		return nil, a.infoErr
	}
	return &fleet.ParkInfo{ID: c.ParkID, Name: "Park " + c.ParkID, City: "Kazan"}, nil
}

func (a *infoAPI) IssuePayment(_ context.Context, _ fleet.Credentials, p model.Payment) (*model.PaymentResult, error) {
	a.payments = append(a.payments, p)
	return &model.PaymentResult{Token: "tok", Status: model.PaymentInProgress}, nil
}

func (a *infoAPI) PaymentStatus(_ context.Context, _ fleet.Credentials, token string) (*model.PaymentResult, error) {
	return &model.PaymentResult{Token: token, Status: model.PaymentSucceeded}, nil
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var ce *cerr.Error
	require.ErrorAs(t, err, &ce)
	return ce.HTTPStatusCode
}

func TestRegisterFillsParkInfo(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	api := &infoAPI{}
	uc := parksuc.New(store.Pool(), store.Repos().Parks, api)

	p, err := uc.Register(ctx, &model.Park{
		ExternalID: "p1", ClientID: "taxi/park/p1", APIKey: "k", IsActive: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Park p1", p.Name)
	assert.Equal(t, "Kazan", p.City)

	_, err = uc.Register(ctx, &model.Park{ExternalID: "p1", ClientID: "c", APIKey: "k"})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	parks, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, parks, 1)
}

func TestRegisterRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	api := &infoAPI{}
	uc := parksuc.New(store.Pool(), store.Repos().Parks, api)

	_, err := uc.Register(ctx, &model.Park{ExternalID: "p1", ClientID: "c", APIKey: "ключ"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.ErrorIs(t, err, fleet.ErrCredentialsEncoding)

	_, err = uc.Register(ctx, &model.Park{ExternalID: "p1", ClientID: "c", APIKey: "k", TimeZone: "Mars/Olympus"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	api.infoErr = &fleet.StatusError{StatusCode: http.StatusForbidden}
	_, err = uc.Register(ctx, &model.Park{ExternalID: "p1", ClientID: "c", APIKey: "k"})
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	api.infoErr = fmt.Errorf("listing drivers: %w", fleet.ErrRateLimited)
	_, err = uc.Register(ctx, &model.Park{ExternalID: "p1", ClientID: "c", APIKey: "k"})
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))
}

func TestUpdateInactiveParkSkipsVerification(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.AddPark(model.Park{ExternalID: "p1", ClientID: "c", APIKey: "k", IsActive: true})
	api := &infoAPI{infoErr: errors.New("revoked")}
	uc := parksuc.New(store.Pool(), store.Repos().Parks, api)

	p, err := uc.Update(ctx, &model.Park{ExternalID: "p1", ClientID: "c", APIKey: "k"})
	require.NoError(t, err)
	assert.False(t, p.IsActive)

	_, err = uc.Update(ctx, &model.Park{ExternalID: "p404", ClientID: "c", APIKey: "k"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestPayments(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.AddPark(model.Park{ExternalID: "p1", ClientID: "c", APIKey: "k", IsActive: true})
	api := &infoAPI{}
	uc := parksuc.New(store.Pool(), store.Repos().Parks, api)

	pay := model.Payment{
		DriverExternalID: "d1",
		Amount:           decimal.RequireFromString("150.25"),
		CategoryID:       "partner_service_manual",
	}
	res, err := uc.IssuePayment(ctx, "p1", pay)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentInProgress, res.Status)
	require.Len(t, api.payments, 1)

	res, err = uc.PaymentStatus(ctx, "p1", res.Token)
	require.NoError(t, err)
	assert.True(t, res.Status.Final())

	pay.Amount = decimal.Zero
	_, err = uc.IssuePayment(ctx, "p1", pay)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = uc.PaymentStatus(ctx, "p404", "tok")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
