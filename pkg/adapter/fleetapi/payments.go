// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fleetapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/shopspring/decimal"
)

// Paths of the payment endpoints.
const (
	PathPayments      = "/v3/parks/driver-profiles/transactions"
	PathPaymentStatus = "/v3/parks/driver-profiles/transactions/status"
)

// HeaderIdempotencyToken identifies a payment across its retries.
const HeaderIdempotencyToken = "X-Idempotency-Token"

type paymentRequest struct {
	ParkID          string          `json:"park_id"`
	DriverProfileID string          `json:"contractor_profile_id"`
	Amount          decimal.Decimal `json:"amount"`
	CategoryID      string          `json:"category_id"`
	Description     string          `json:"description,omitempty"`
}

type paymentResponse struct {
	Status string `json:"status"`
}

func (r paymentResponse) result(token string) (*model.PaymentResult, error) {
	st, err := model.ParsePaymentStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("payment status %q: %w", r.Status, err)
	}
	return &model.PaymentResult{Token: token, Status: st}, nil
}

// IssuePayment submits p with a fresh idempotency token. While the
// API reports the payment as in_progress, it is submitted again with
// the same token up to Config.PaymentRetries times, so it is applied
// at most once. The last observed status is returned.
func (c *Client) IssuePayment(
	ctx context.Context, creds fleet.Credentials, p model.Payment,
) (*model.PaymentResult, error) {
	token := c.newToken()
	cl := call{
		endpoint: "payments",
		method:   http.MethodPost,
		path:     PathPayments,
		header:   http.Header{HeaderIdempotencyToken: {token}},
		body: paymentRequest{
			ParkID:          creds.ParkID,
			DriverProfileID: p.DriverExternalID,
			Amount:          p.Amount,
			CategoryID:      p.CategoryID,
			Description:     p.Description,
		},
	}
	for retry := 0; ; retry++ {
		var resp paymentResponse
		if err := c.do(ctx, creds, cl, &resp); err != nil {
			return nil, err
		}
		res, err := resp.result(token)
		if err != nil {
			return nil, err
		}
		if res.Status.Final() || retry >= c.cfg.PaymentRetries {
			return res, nil
		}
		log.Debug(
			ctx, "payment is in progress",
			log.Park(creds.ParkID),
			slog.String("token", token),
			slog.Int("retry", retry+1),
		)
		if err := c.sleep(ctx, c.cfg.PaymentRetryDelay); err != nil {
			return res, fmt.Errorf("waiting for payment %s: %w", token, err)
		}
	}
}

// PaymentStatus polls the status of the payment with the token
// idempotency token.
func (c *Client) PaymentStatus(
	ctx context.Context, creds fleet.Credentials, token string,
) (*model.PaymentResult, error) {
	var resp paymentResponse
	err := c.do(ctx, creds, call{
		endpoint: "payment-status",
		method:   http.MethodGet,
		path:     PathPaymentStatus,
		query:    url.Values{"park_id": {creds.ParkID}},
		header:   http.Header{HeaderIdempotencyToken: {token}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.result(token)
}
