// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package parksrs realizes the parks resource, allowing the parks
// administration and payment REST APIs to be accepted and delegated
// to the parks use case respectively.
package parksrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/fleetsync/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/fleetsync/pkg/core/usecase/parksuc"
)

type resource struct {
	parks *parksuc.UseCase
}

// Register instantiates a resource adapting the parks use case instance
// with the relevant REST APIs including:
//  1. GET /parks which lists all parks,
//  2. GET /parks/:id which returns one park,
//  3. POST /parks which registers a park after checking its
//     credentials with the fleet API,
//  4. PUT /parks/:id which updates a park,
//  5. POST /parks/:id/payments which issues a driver payment, and
//  6. GET /parks/:id/payments/:token which polls a payment status.
//
// The API keys of parks are accepted, but never returned.
func Register(r *gin.RouterGroup, parks *parksuc.UseCase) {
	rs := &resource{parks: parks}
	r.GET("parks", rs.List)
	r.GET("parks/:id", rs.Get)
	r.POST("parks", rs.Create)
	r.PUT("parks/:id", rs.Update)
	r.POST("parks/:id/payments", rs.IssuePayment)
	r.GET("parks/:id/payments/:token", rs.PaymentStatus)
}

func (rs *resource) List(c *gin.Context) {
	parks, err := rs.parks.List(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	resp := make([]parkResp, len(parks))
	for i := range parks {
		resp[i] = serPark(&parks[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (rs *resource) Get(c *gin.Context) {
	req := &parkURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	p, err := rs.parks.Get(c, req.ID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serPark(p))
}

func (rs *resource) Create(c *gin.Context) {
	p := dserCreateParkReq(c)
	if p == nil {
		return
	}
	created, err := rs.parks.Register(c, p)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serPark(created))
}

func (rs *resource) Update(c *gin.Context) {
	p := dserUpdateParkReq(c)
	if p == nil {
		return
	}
	updated, err := rs.parks.Update(c, p)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serPark(updated))
}

func (rs *resource) IssuePayment(c *gin.Context) {
	parkID, pay := dserPaymentReq(c)
	if pay == nil {
		return
	}
	res, err := rs.parks.IssuePayment(c, parkID, *pay)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	code := http.StatusOK
	if !res.Status.Final() {
		code = http.StatusAccepted
	}
	c.JSON(code, serPaymentResult(res))
}

func (rs *resource) PaymentStatus(c *gin.Context) {
	req := &paymentURI{}
	if !serdser.BindURI(c, req) {
		return
	}
	res, err := rs.parks.PaymentStatus(c, req.ID, req.Token)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serPaymentResult(res))
}
