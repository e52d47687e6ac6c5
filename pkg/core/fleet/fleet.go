// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fleet defines the port which the sync use cases need from
// the remote fleet API. It contains the API interface, the raw record
// types as they are decoded from the API responses, a lazy Pager for
// the paginated list endpoints, and the errors which the use cases
// may inspect with errors.Is or errors.As.
//
// The pkg/adapter/fleetapi package implements the API interface over
// HTTP. Use case tests implement it in memory.
package fleet

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/fleetsync/pkg/core/model"
)

// API is the set of fleet API operations which fleetsync consumes.
// Paginated resources are returned as pagers which perform no request
// until their NextPage method is called. Other methods block until
// their response is received (including any rate-limit retries).
type API interface {
	// Drivers lists the driver profiles of a park with their
	// financial accounts and licenses.
	Drivers(c Credentials) *Pager[DriverProfile]

	// Cars lists the cars of a park.
	Cars(c Credentials) *Pager[CarRecord]

	// Orders lists the completed orders of a park which ended in the
	// w window.
	Orders(c Credentials, w model.Window) *Pager[OrderRecord]

	// Transactions lists the transactions of the given orders.
	Transactions(c Credentials, orderIDs []string) *Pager[TransactionRecord]

	// WorkRules fetches all work rules of a park.
	WorkRules(ctx context.Context, c Credentials) ([]WorkRuleRecord, error)

	// Categories fetches the transaction categories of a park.
	Categories(ctx context.Context, c Credentials) ([]CategoryRecord, error)

	// ParkInfo fetches the name and city of a park, also verifying
	// that its credentials are accepted.
	ParkInfo(ctx context.Context, c Credentials) (*ParkInfo, error)

	// IssuePayment creates a balance transaction for a driver with a
	// fresh idempotency token. The returned status may be in_progress
	// which must be polled by PaymentStatus later.
	IssuePayment(
		ctx context.Context, c Credentials, p model.Payment,
	) (*model.PaymentResult, error)

	// PaymentStatus polls the status of an issued payment.
	PaymentStatus(
		ctx context.Context, c Credentials, token string,
	) (*model.PaymentResult, error)
}

var (
	// ErrCredentialsEncoding indicates credentials which contain
	// characters out of the ISO-8859-1 range. Such values may not be
	// sent as HTTP header values, so they are rejected before any
	// request is made.
	ErrCredentialsEncoding = errors.New(
		"credentials must only contain latin-1 characters",
	)

	// ErrMissingCredentials indicates an empty credential field.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrRateLimited indicates that the fleet API kept responding with
	// rate-limit responses until the maximum attempts were exhausted.
	ErrRateLimited = errors.New("rate limited by the fleet API")

	// ErrUnavailable indicates that requests are short-circuited since
	// the fleet API failed too many times recently.
	ErrUnavailable = errors.New("fleet API is unavailable")
)

// StatusError reports a non-200 response which is not retried.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string // possibly truncated response body
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf(
		"%s %s: unexpected status %d: %s",
		e.Method, e.Path, e.StatusCode, e.Body,
	)
}

// Credentials identify and authenticate one park in the fleet API.
type Credentials struct {
	ParkID   string
	ClientID string
	APIKey   string
}

// CredentialsOf returns the credentials of p.
func CredentialsOf(p *model.Park) Credentials {
	return Credentials{
		ParkID:   p.ExternalID,
		ClientID: p.ClientID,
		APIKey:   p.APIKey,
	}
}

// Validate returns ErrMissingCredentials if a field is empty and
// ErrCredentialsEncoding if a field has a rune beyond U+00FF.
func (c Credentials) Validate() error {
	for _, f := range [...]struct{ name, v string }{
		{"park id", c.ParkID},
		{"client id", c.ClientID},
		{"api key", c.APIKey},
	} {
		if f.v == "" {
			return fmt.Errorf("%s: %w", f.name, ErrMissingCredentials)
		}
		for _, r := range f.v {
			if r > 0xFF {
				return fmt.Errorf("%s: %w", f.name, ErrCredentialsEncoding)
			}
		}
	}
	return nil
}
