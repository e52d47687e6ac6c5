// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the error types which the use cases return
// when the failure should be reported to an interactive caller (such
// as the REST API) with a specific status. Other errors are reported
// as internal failures with a generic message.
package cerr

import (
	"fmt"
	"net/http"
)

// Error annotates Err with the HTTP status code which describes it.
type Error struct {
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

func BadRequest(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusBadRequest}
}

func NotFound(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusNotFound}
}

func Conflict(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusConflict}
}

// Unprocessable reports a well-formed request which conflicts with
// the state of the remote fleet API, such as credentials which the
// API rejects.
func Unprocessable(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusUnprocessableEntity}
}

// Unavailable reports that the remote fleet API may not be reached
// at the moment (rate limited or open circuit breaker).
func Unavailable(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusServiceUnavailable}
}
