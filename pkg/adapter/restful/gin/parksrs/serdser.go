// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parksrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/fleetsync/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/shopspring/decimal"
)

type parkURI struct {
	ID string `uri:"id" binding:"required"`
}

type paymentURI struct {
	ID    string `uri:"id" binding:"required"`
	Token string `uri:"token" binding:"required,uuid"`
}

type parkReq struct {
	ClientID string `json:"client_id" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
	Name     string `json:"name"`
	City     string `json:"city"`
	TimeZone string `json:"time_zone" binding:"omitempty,timezone"`
	IsActive *bool  `json:"is_active"`
}

type createParkReq struct {
	ExternalID string `json:"id" binding:"required"`
	parkReq
}

func (pr parkReq) toModel(externalID string) *model.Park {
	active := true
	if pr.IsActive != nil {
		active = *pr.IsActive
	}
	return &model.Park{
		ExternalID: externalID,
		ClientID:   pr.ClientID,
		APIKey:     pr.APIKey,
		Name:       pr.Name,
		City:       pr.City,
		TimeZone:   pr.TimeZone,
		IsActive:   active,
	}
}

func dserCreateParkReq(c *gin.Context) *model.Park {
	req := &createParkReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return nil
	}
	return req.toModel(req.ExternalID)
}

func dserUpdateParkReq(c *gin.Context) *model.Park {
	uri := &parkURI{}
	if !serdser.BindURI(c, uri) {
		return nil
	}
	req := &parkReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return nil
	}
	return req.toModel(uri.ID)
}

type parkResp struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	TimeZone string `json:"time_zone,omitempty"`
	IsActive bool   `json:"is_active"`
}

func serPark(p *model.Park) parkResp {
	return parkResp{
		ID:       p.ExternalID,
		ClientID: p.ClientID,
		Name:     p.Name,
		City:     p.City,
		TimeZone: p.TimeZone,
		IsActive: p.IsActive,
	}
}

type paymentReq struct {
	DriverID    string `json:"driver_id" binding:"required"`
	Amount      string `json:"amount" binding:"required,numeric"`
	CategoryID  string `json:"category_id" binding:"required"`
	Description string `json:"description"`
}

func dserPaymentReq(c *gin.Context) (string, *model.Payment) {
	uri := &parkURI{}
	if !serdser.BindURI(c, uri) {
		return "", nil
	}
	req := &paymentReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return "", nil
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		var errs map[string][]string
		serdser.AddErr(&errs, "amount", err.Error())
		c.JSON(http.StatusBadRequest, errs)
		return "", nil
	}
	return uri.ID, &model.Payment{
		DriverExternalID: req.DriverID,
		Amount:           amount,
		CategoryID:       req.CategoryID,
		Description:      req.Description,
	}
}

type paymentResp struct {
	Token  string `json:"token"`
	Status string `json:"status"`
}

func serPaymentResult(r *model.PaymentResult) paymentResp {
	return paymentResp{Token: r.Token, Status: r.Status.String()}
}
