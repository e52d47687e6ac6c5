// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/momeni/fleetsync/internal/test/memstore"
	"github.com/momeni/fleetsync/pkg/adapter/restful/gin"
	"github.com/momeni/fleetsync/pkg/adapter/restful/gin/routes"
	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/momeni/fleetsync/pkg/core/usecase/parksuc"
	"github.com/momeni/fleetsync/pkg/core/usecase/syncuc"
	"github.com/stretchr/testify/suite"
)

const paymentToken = "5b7c1f0e-7d0a-4f5e-9b8e-2f1c3a4d5e6f"

// fakeAPI implements the fleet API calls which are reachable from the
// tested routes. Other calls panic through the nil embedded API.
type fakeAPI struct {
	fleet.API
}

func (fakeAPI) ParkInfo(_ context.Context, c fleet.Credentials) (*fleet.ParkInfo, error) {
	return &fleet.ParkInfo{ID: c.ParkID, Name: "Fleet " + c.ParkID, City: "Moscow"}, nil
}

func (fakeAPI) WorkRules(context.Context, fleet.Credentials) ([]fleet.WorkRuleRecord, error) {
	return []fleet.WorkRuleRecord{
		{ID: "wr1", Name: "Default", IsEnabled: true},
		{ID: "wr2", Name: "Night", IsEnabled: false},
	}, nil
}

func (fakeAPI) IssuePayment(context.Context, fleet.Credentials, model.Payment) (*model.PaymentResult, error) {
	return &model.PaymentResult{Token: paymentToken, Status: model.PaymentInProgress}, nil
}

func (fakeAPI) PaymentStatus(_ context.Context, _ fleet.Credentials, token string) (*model.PaymentResult, error) {
	return &model.PaymentResult{Token: token, Status: model.PaymentSucceeded}, nil
}

type GinTestSuite struct {
	suite.Suite

	Store *memstore.Store
	Gin   *gin.Engine
}

func TestGinTestSuite(t *testing.T) {
	suite.Run(t, new(GinTestSuite))
}

func (gts *GinTestSuite) SetupTest() {
	gts.Store = memstore.New()
	api := fakeAPI{}
	p, repos := gts.Store.Pool(), gts.Store.Repos()
	parks := parksuc.New(p, repos.Parks, api)
	sync, err := syncuc.New(p, repos, api)
	gts.Require().NoError(err, "cannot instantiate sync use case")

	gts.Gin = gin.New(gin.Recovery(slog.Default()))
	routes.Register(gts.Gin, parks, sync)
}

func (gts *GinTestSuite) do(
	method, path, body string, res any,
) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, routes.Prefix+path, r)
	gts.Require().NoError(err, "cannot create request")
	if body != "" {
		req.Header.Add("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	if res != nil {
		gts.Require().NoError(
			json.Unmarshal(w.Body.Bytes(), res),
			"body is not json: %s", w.Body.String(),
		)
	}
	return w
}

type parkResp struct {
	ID       string
	ClientID string `json:"client_id"`
	APIKey   string `json:"api_key"`
	Name     string
	City     string
	TimeZone string `json:"time_zone"`
	IsActive bool   `json:"is_active"`
	Detail   string
}

func (gts *GinTestSuite) TestRegisterPark() {
	res := &parkResp{}
	w := gts.do(http.MethodPost, "/parks",
		`{"id":"p1","client_id":"taxi/park/p1","api_key":"secret"}`, res)
	gts.Equal(http.StatusCreated, w.Code, w.Body.String())
	gts.Equal(parkResp{
		ID:       "p1",
		ClientID: "taxi/park/p1",
		Name:     "Fleet p1",
		City:     "Moscow",
		IsActive: true,
	}, *res, "api key must not be returned")

	res = &parkResp{}
	w = gts.do(http.MethodPost, "/parks",
		`{"id":"p1","client_id":"taxi/park/p1","api_key":"secret"}`, res)
	gts.Equal(http.StatusConflict, w.Code)
	gts.Contains(res.Detail, "already registered")

	res = &parkResp{}
	w = gts.do(http.MethodPut, "/parks/p1",
		`{"client_id":"taxi/park/p1","api_key":"secret","name":"Renamed",`+
			`"time_zone":"Asia/Yekaterinburg","is_active":false}`, res)
	gts.Equal(http.StatusOK, w.Code, w.Body.String())
	gts.Equal("Renamed", res.Name)
	gts.Equal("Asia/Yekaterinburg", res.TimeZone)
	gts.False(res.IsActive)

	var list []parkResp
	w = gts.do(http.MethodGet, "/parks", "", &list)
	gts.Equal(http.StatusOK, w.Code)
	gts.Len(list, 1)
}

func (gts *GinTestSuite) TestRegisterParkBadRequest() {
	for _, tc := range []struct {
		name, body, field string
	}{
		{"missing client id", `{"id":"p1","api_key":"k"}`, "ClientID"},
		{"missing id", `{"client_id":"c","api_key":"k"}`, "ExternalID"},
		{"bad time zone", `{"id":"p1","client_id":"c","api_key":"k","time_zone":"Mars/Base"}`, "TimeZone"},
	} {
		gts.Run(tc.name, func() {
			res := map[string][]string{}
			w := gts.do(http.MethodPost, "/parks", tc.body, &res)
			gts.Equal(http.StatusBadRequest, w.Code)
			gts.Len(res[tc.field], 1, "errors: %v", res)
		})
	}

	res := &parkResp{}
	w := gts.do(http.MethodPost, "/parks",
		`{"id":"p1","client_id":"c","api_key":"ключ"}`, res)
	gts.Equal(http.StatusBadRequest, w.Code, "non latin-1 credentials")
	gts.NotEmpty(res.Detail)
}

func (gts *GinTestSuite) TestMissingPark() {
	res := &parkResp{}
	w := gts.do(http.MethodGet, "/parks/missing", "", res)
	gts.Equal(http.StatusNotFound, w.Code)
	gts.Contains(res.Detail, "missing")
}

type envelope struct {
	Status  string
	Message string
}

func (gts *GinTestSuite) TestSyncTask() {
	gts.Store.AddPark(model.Park{
		ExternalID: "p1", ClientID: "c", APIKey: "k", IsActive: true,
	})
	res := &envelope{}
	w := gts.do(http.MethodPost, "/sync/work-rules", "", res)
	gts.Equal(http.StatusOK, w.Code, w.Body.String())
	gts.Equal("succeeded", res.Status)
	gts.Contains(res.Message, "work-rules: 1 parks")
	gts.Len(gts.Store.WorkRules(), 2)

	var runs []struct {
		Task   string
		Status string
		Parks  int
	}
	w = gts.do(http.MethodGet, "/sync/runs?limit=5", "", &runs)
	gts.Equal(http.StatusOK, w.Code)
	gts.Require().Len(runs, 1)
	gts.Equal("work-rules", runs[0].Task)
	gts.Equal("succeeded", runs[0].Status)
	gts.Equal(1, runs[0].Parks)
}

func (gts *GinTestSuite) TestSyncTaskBadRequest() {
	errs := map[string][]string{}
	w := gts.do(http.MethodPost, "/sync/unknown", "", &errs)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Len(errs["task"], 1)

	errs = map[string][]string{}
	w = gts.do(http.MethodPost, "/sync/orders?from=2024-01-01", "", &errs)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Len(errs["from/to"], 1, "half windows are rejected")

	res := &envelope{}
	w = gts.do(http.MethodPost,
		"/sync/cars?from=2024-01-01&to=2024-01-02", "", res)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Equal("error", res.Status)
	gts.Contains(res.Message, "does not accept a window")

	w = gts.do(http.MethodGet, "/sync/runs?limit=0", "", nil)
	gts.Equal(http.StatusOK, w.Code, "zero limit takes the default")
	w = gts.do(http.MethodGet, "/sync/runs?limit=-1", "", nil)
	gts.Equal(http.StatusBadRequest, w.Code)
}

func (gts *GinTestSuite) TestBackfillStatus() {
	res := &struct {
		Job, State string
	}{}
	w := gts.do(http.MethodGet, "/backfill/daily?to=2024-01-05", "", res)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal("daily", res.Job)
	gts.Equal("not-started", res.State)

	errs := map[string][]string{}
	w = gts.do(http.MethodGet, "/backfill/daily?to=yesterday", "", &errs)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Len(errs["to"], 1)
}

func (gts *GinTestSuite) TestPayments() {
	gts.Store.AddPark(model.Park{
		ExternalID: "p1", ClientID: "c", APIKey: "k", IsActive: true,
	})
	res := &struct {
		Token, Status string
	}{}
	w := gts.do(http.MethodPost, "/parks/p1/payments",
		`{"driver_id":"d1","amount":"-150.50","category_id":"partner_service_manual"}`,
		res)
	gts.Equal(http.StatusAccepted, w.Code, w.Body.String())
	gts.Equal(paymentToken, res.Token)
	gts.Equal("in_progress", res.Status)

	w = gts.do(http.MethodGet, "/parks/p1/payments/"+paymentToken, "", res)
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal("success", res.Status)

	errs := map[string][]string{}
	w = gts.do(http.MethodGet, "/parks/p1/payments/not-a-uuid", "", &errs)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Len(errs["Token"], 1)

	errs = map[string][]string{}
	w = gts.do(http.MethodPost, "/parks/p1/payments",
		`{"driver_id":"d1","amount":"ten","category_id":"c"}`, &errs)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Len(errs["Amount"], 1)
}

func (gts *GinTestSuite) TestMetrics() {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	gts.Equal(http.StatusOK, w.Code)
	gts.Contains(w.Body.String(), "go_goroutines")
}
