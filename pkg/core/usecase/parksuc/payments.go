// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parksuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/momeni/fleetsync/pkg/core/model"
)

// IssuePayment credits (or debits) the balance of a driver of the
// park. The returned status may be in_progress, in which case the
// caller should poll PaymentStatus with the returned token.
func (uc *UseCase) IssuePayment(
	ctx context.Context, parkID string, pay model.Payment,
) (*model.PaymentResult, error) {
	switch {
	case pay.DriverExternalID == "":
		return nil, cerr.BadRequest(errors.New("driver id is empty"))
	case pay.Amount.IsZero():
		return nil, cerr.BadRequest(errors.New("amount is zero"))
	case pay.CategoryID == "":
		return nil, cerr.BadRequest(errors.New("category id is empty"))
	}
	p, err := uc.Get(ctx, parkID)
	if err != nil {
		return nil, err
	}
	res, err := uc.api.IssuePayment(ctx, fleet.CredentialsOf(p), pay)
	if err != nil {
		return nil, apiError(fmt.Errorf("issuing payment: %w", err))
	}
	log.Info(
		ctx, "payment is issued",
		log.Park(parkID),
		slog.String("driver", pay.DriverExternalID),
		slog.String("amount", pay.Amount.String()),
		slog.String("token", res.Token),
		slog.String("status", res.Status.String()),
	)
	return res, nil
}

// PaymentStatus polls the status of a payment which was issued with
// the token idempotency token.
func (uc *UseCase) PaymentStatus(
	ctx context.Context, parkID, token string,
) (*model.PaymentResult, error) {
	if token == "" {
		return nil, cerr.BadRequest(errors.New("token is empty"))
	}
	p, err := uc.Get(ctx, parkID)
	if err != nil {
		return nil, err
	}
	res, err := uc.api.PaymentStatus(ctx, fleet.CredentialsOf(p), token)
	if err != nil {
		return nil, apiError(fmt.Errorf("polling payment status: %w", err))
	}
	return res, nil
}
