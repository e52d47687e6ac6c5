// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the request binding and response
// serialization helpers which are shared by the resource packages.
package serdser

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/momeni/fleetsync/pkg/core/cerr"
	"github.com/momeni/fleetsync/pkg/core/log"
)

// Bind binds req using b and writes a 400 response if it fails.
// Validation errors are reported per field, like
//
//	{"Field": ["Key: ... Error:Field validation ..."]}
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	return handle(c, c.ShouldBindWith(req, b))
}

// BindURI binds the path parameters to req like Bind.
func BindURI(c *gin.Context, req any) bool {
	return handle(c, c.ShouldBindUri(req))
}

func handle(c *gin.Context, err error) bool {
	switch err := err.(type) {
	case nil:
		return true
	case *validator.InvalidValidationError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": err.Error(),
		})
	case validator.ValidationErrors:
		var nameToErrs map[string][]string
		for _, ferr := range err {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

// SerErr writes err as {"detail": ...}. Only the cerr.Error messages
// are exposed; other errors are logged and reported generically.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		c.JSON(ce.HTTPStatusCode, gin.H{
			"detail": ce.Err.Error(),
		})
		return
	}
	log.Error(c, "request failed", log.Err("err", err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": http.StatusText(http.StatusInternalServerError),
	})
}

// Envelope is the coarse outcome of a triggered routine.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SerEnvelope writes err as an error envelope with the status code of
// SerErr, so the clients which trigger routines parse one shape.
func SerEnvelope(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var ce *cerr.Error
	if errors.As(err, &ce) {
		code, msg = ce.HTTPStatusCode, ce.Err.Error()
	} else {
		log.Error(c, "routine failed", log.Err("err", err))
	}
	c.JSON(code, Envelope{Status: "error", Message: msg})
}
