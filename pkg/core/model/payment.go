// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of a payment issued to a driver balance.
// Although this enum is numeric, it is (de)serialized as a string.
type PaymentStatus int

// Valid values for the PaymentStatus enum.
const (
	PaymentStatusInvalid PaymentStatus = iota // zero value is invalid

	PaymentInProgress // not final, the status must be polled
	PaymentSucceeded
	PaymentFailed
)

// ErrUnknownPaymentStatus indicates that a string may not be parsed
// as a known payment status.
var ErrUnknownPaymentStatus = errors.New("unknown payment status")

// PaymentStatusError indicates an invalid payment status value.
type PaymentStatusError int

// Error implements the error interface.
func (e PaymentStatusError) Error() string {
	return fmt.Sprintf("invalid payment status: %d", e)
}

// Validate returns nil if p is valid, otherwise a PaymentStatusError.
func (p PaymentStatus) Validate() error {
	switch p {
	case PaymentInProgress, PaymentSucceeded, PaymentFailed:
		return nil
	default:
		return PaymentStatusError(p)
	}
}

// Final reports whether p may not change anymore.
func (p PaymentStatus) Final() bool {
	return p == PaymentSucceeded || p == PaymentFailed
}

// String converts p to its wire name. Invalid values cause a panic.
func (p PaymentStatus) String() string {
	switch p {
	case PaymentInProgress:
		return "in_progress"
	case PaymentSucceeded:
		return "success"
	case PaymentFailed:
		return "failed"
	default:
		panic(PaymentStatusError(p))
	}
}

// ParsePaymentStatus parses the wire name of a payment status.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch s {
	case "in_progress":
		return PaymentInProgress, nil
	case "success":
		return PaymentSucceeded, nil
	case "failed":
		return PaymentFailed, nil
	default:
		return PaymentStatusInvalid, ErrUnknownPaymentStatus
	}
}

// Payment asks the fleet API to credit (or debit, with a negative
// amount) the balance of a driver.
type Payment struct {
	DriverExternalID string
	Amount           decimal.Decimal
	CategoryID       string
	Description      string
}

// PaymentResult is the last observed state of an issued payment.
// Token is the idempotency token which identifies it for polling.
type PaymentResult struct {
	Token  string
	Status PaymentStatus
}
