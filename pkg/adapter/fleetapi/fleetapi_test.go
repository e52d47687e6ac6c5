// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fleetapi_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/fleetsync/pkg/adapter/fleetapi"
	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var creds = fleet.Credentials{
	ParkID:   "park1",
	ClientID: "taxi/park/park1",
	APIKey:   "secret",
}

type request struct {
	Path   string
	Header http.Header
	Body   map[string]any
}

// fakeServer records the requests and answers them with handle.
type fakeServer struct {
	t      *testing.T
	mu     sync.Mutex
	reqs   []request
	handle func(n int, r request) (int, any)
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	assert.NoError(s.t, err)
	req := request{Path: r.URL.Path, Header: r.Header.Clone()}
	if len(b) > 0 {
		assert.NoError(s.t, json.Unmarshal(b, &req.Body))
	}
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	n := len(s.reqs)
	s.mu.Unlock()
	code, body := s.handle(n, req)
	w.WriteHeader(code)
	if body != nil {
		assert.NoError(s.t, json.NewEncoder(w).Encode(body))
	}
}

func (s *fakeServer) requests() []request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]request(nil), s.reqs...)
}

type sleeps struct {
	mu sync.Mutex
	ds []time.Duration
}

func (s *sleeps) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = append(s.ds, d)
	return ctx.Err()
}

func newClient(
	t *testing.T, cfg fleetapi.Config,
	handle func(n int, r request) (int, any),
	opts ...fleetapi.Option,
) (*fleetapi.Client, *fakeServer, *sleeps) {
	t.Helper()
	fs := &fakeServer{t: t, handle: handle}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	sl := &sleeps{}
	opts = append([]fleetapi.Option{fleetapi.WithSleep(sl.sleep)}, opts...)
	c, err := fleetapi.New(cfg, opts...)
	require.NoError(t, err)
	return c, fs, sl
}

func TestDriversPaginationCompleteness(t *testing.T) {
	const total = 2500
	c, fs, _ := newClient(t, fleetapi.Config{
		IntegratorID: "integrator", IntegratorAPIKey: "ikey",
	}, func(_ int, r request) (int, any) {
		offset := int(r.Body["offset"].(float64))
		limit := int(r.Body["limit"].(float64))
		var profiles []map[string]any
		for i := offset; i < min(offset+limit, total); i++ {
			profiles = append(profiles, map[string]any{
				"driver_profile": map[string]any{"id": strconv.Itoa(i)},
			})
		}
		return http.StatusOK, map[string]any{
			"driver_profiles": profiles,
			"total":           total,
		}
	})

	drivers, err := fleet.Collect(context.Background(), c.Drivers(creds))
	require.NoError(t, err)
	require.Len(t, drivers, total)
	for i, d := range drivers {
		require.Equal(t, strconv.Itoa(i), d.Profile.ID)
	}

	reqs := fs.requests()
	require.Len(t, reqs, 3)
	for i, r := range reqs {
		assert.Equal(t, fleetapi.PathDrivers, r.Path)
		assert.EqualValues(t, i*fleetapi.DriversLimit, r.Body["offset"])
		assert.EqualValues(t, fleetapi.DriversLimit, r.Body["limit"])
	}
	h := reqs[0].Header
	assert.Equal(t, creds.ClientID, h.Get("X-Client-ID"))
	assert.Equal(t, creds.ParkID, h.Get("X-Park-ID"))
	assert.Equal(t, creds.APIKey, h.Get("X-API-Key"))
	assert.Equal(t, "integrator", h.Get("X-Integrator-ID"))
	assert.Equal(t, "ikey", h.Get("X-Integrator-API-Key"))
	assert.Equal(t, fleetapi.DefaultLanguage, h.Get("Accept-Language"))
}

func TestOrdersCursorPagination(t *testing.T) {
	pages := map[string]struct {
		ids  []string
		next string
	}{
		"":   {[]string{"o1", "o2"}, "c1"},
		"c1": {[]string{"o2", "o3"}, "c2"},
		"c2": {[]string{"o4"}, ""},
	}
	c, fs, _ := newClient(t, fleetapi.Config{}, func(_ int, r request) (int, any) {
		cursor, _ := r.Body["cursor"].(string)
		p := pages[cursor]
		orders := make([]map[string]any, 0, len(p.ids))
		for _, id := range p.ids {
			orders = append(orders, map[string]any{
				"id": id, "price": "120.50", "ended_at": "2024-03-10T12:00:00+03:00",
			})
		}
		return http.StatusOK, map[string]any{"orders": orders, "cursor": p.next}
	})

	msk, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	w := model.Window{
		From: time.Date(2024, 3, 10, 0, 0, 0, 0, msk),
		To:   time.Date(2024, 3, 10, 23, 59, 59, 0, msk),
	}
	p := c.Orders(creds, w)
	var ids []string
	for p.More() {
		page, err := p.NextPage(context.Background())
		require.NoError(t, err)
		for _, o := range page {
			ids = append(ids, o.ID)
		}
	}
	assert.Equal(t, []string{"o1", "o2", "o2", "o3", "o4"}, ids)
	assert.Equal(t, 3, p.Pages())

	reqs := fs.requests()
	require.Len(t, reqs, 3)
	order := reqs[0].Body["query"].(map[string]any)["park"].(map[string]any)["order"].(map[string]any)
	assert.Equal(t, map[string]any{
		"from": "2024-03-10T00:00:00+03:00",
		"to":   "2024-03-10T23:59:59+03:00",
	}, order["ended_at"])
	assert.Equal(t, []any{"complete"}, order["statuses"])
	assert.EqualValues(t, fleetapi.OrdersLimit, reqs[0].Body["limit"])
	assert.NotContains(t, reqs[0].Body, "cursor")
	assert.Equal(t, "c2", reqs[2].Body["cursor"])
}

func TestRepeatedCursorStops(t *testing.T) {
	c, fs, _ := newClient(t, fleetapi.Config{}, func(int, request) (int, any) {
		return http.StatusOK, map[string]any{
			"transactions": []map[string]any{{"id": "t1", "amount": "-10"}},
			"cursor":       "same",
		}
	})
	txs, err := fleet.Collect(context.Background(), c.Transactions(creds, []string{"o1"}))
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(-10)))
	assert.Len(t, fs.requests(), 2)
}

func TestBackoffBound(t *testing.T) {
	c, fs, sl := newClient(t, fleetapi.Config{
		MaxAttempts: 4,
		BackoffBase: 100 * time.Millisecond,
	}, func(int, request) (int, any) {
		return http.StatusTooManyRequests, nil
	})

	_, err := c.WorkRules(context.Background(), creds)
	require.ErrorIs(t, err, fleet.ErrRateLimited)
	assert.Len(t, fs.requests(), 4)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	}, sl.ds)
}

func TestBackoffRecovers(t *testing.T) {
	c, fs, sl := newClient(t, fleetapi.Config{BackoffBase: time.Second}, func(n int, _ request) (int, any) {
		if n <= 2 {
			return http.StatusTooManyRequests, nil
		}
		return http.StatusOK, map[string]any{"rules": []map[string]any{
			{"id": "r1", "name": "Default", "is_enabled": true},
		}}
	})

	rules, err := c.WorkRules(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, []fleet.WorkRuleRecord{{ID: "r1", Name: "Default", IsEnabled: true}}, rules)
	assert.Len(t, fs.requests(), 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sl.ds)
	assert.Equal(t, fleetapi.PathWorkRules, fs.requests()[0].Path)
}

func TestBackoffIsCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fs := &fakeServer{t: t, handle: func(int, request) (int, any) {
		cancel()
		return http.StatusTooManyRequests, nil
	}}
	srv := httptest.NewServer(fs)
	defer srv.Close()
	c, err := fleetapi.New(fleetapi.Config{BaseURL: srv.URL, BackoffBase: time.Hour})
	require.NoError(t, err)

	_, err = c.Categories(ctx, creds)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fs.requests(), 1)
}

func TestStatusErrorIsNotRetried(t *testing.T) {
	c, fs, sl := newClient(t, fleetapi.Config{}, func(int, request) (int, any) {
		return http.StatusForbidden, map[string]string{"message": "forbidden"}
	})

	_, err := c.ParkInfo(context.Background(), creds)
	var se *fleet.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Equal(t, fleetapi.PathDrivers, se.Path)
	assert.Contains(t, se.Body, "forbidden")
	assert.Len(t, fs.requests(), 1)
	assert.Empty(t, sl.ds)
}

func TestEncodingFailsFast(t *testing.T) {
	c, fs, _ := newClient(t, fleetapi.Config{}, func(int, request) (int, any) {
		return http.StatusOK, map[string]any{}
	})

	bad := creds
	bad.APIKey = "ключ"
	_, err := c.WorkRules(context.Background(), bad)
	require.ErrorIs(t, err, fleet.ErrCredentialsEncoding)
	_, err = fleet.Collect(context.Background(), c.Cars(bad))
	require.ErrorIs(t, err, fleet.ErrCredentialsEncoding)
	assert.Empty(t, fs.requests())
}

func TestBreakerCountsServerErrorsOnly(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusUnauthorized)
	c, fs, _ := newClient(t, fleetapi.Config{BreakerFailures: 2, BreakerTimeout: time.Hour}, func(int, request) (int, any) {
		return int(code.Load()), nil
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.WorkRules(ctx, creds)
		require.Error(t, err)
		require.NotErrorIs(t, err, fleet.ErrUnavailable)
	}

	code.Store(http.StatusBadGateway)
	for i := 0; i < 2; i++ {
		_, err := c.WorkRules(ctx, creds)
		var se *fleet.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	}
	_, err := c.WorkRules(ctx, creds)
	require.ErrorIs(t, err, fleet.ErrUnavailable)
	assert.Len(t, fs.requests(), 5)
}

func TestParkInfo(t *testing.T) {
	c, fs, _ := newClient(t, fleetapi.Config{}, func(int, request) (int, any) {
		return http.StatusOK, map[string]any{
			"driver_profiles": []any{},
			"parks":           []map[string]any{{"id": "park1", "name": "Alpha", "city": "Kazan"}},
			"total":           0,
		}
	})

	info, err := c.ParkInfo(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, &fleet.ParkInfo{ID: "park1", Name: "Alpha", City: "Kazan"}, info)
	assert.EqualValues(t, 1, fs.requests()[0].Body["limit"])
}

func TestIssuePaymentRetriesWithSameToken(t *testing.T) {
	tokens := 0
	newToken := func() string {
		tokens++
		return fmt.Sprintf("token-%d", tokens)
	}
	statuses := []string{"in_progress", "in_progress", "success"}
	c, fs, sl := newClient(t, fleetapi.Config{
		PaymentRetries: 5, PaymentRetryDelay: 3 * time.Second,
	}, func(n int, _ request) (int, any) {
		return http.StatusOK, map[string]string{"status": statuses[n-1]}
	}, fleetapi.WithTokens(newToken))

	pay := model.Payment{
		DriverExternalID: "d1",
		Amount:           decimal.RequireFromString("150.25"),
		CategoryID:       "partner_service_manual",
		Description:      "bonus",
	}
	res, err := c.IssuePayment(context.Background(), creds, pay)
	require.NoError(t, err)
	assert.Equal(t, &model.PaymentResult{Token: "token-1", Status: model.PaymentSucceeded}, res)

	reqs := fs.requests()
	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.Equal(t, fleetapi.PathPayments, r.Path)
		assert.Equal(t, "token-1", r.Header.Get(fleetapi.HeaderIdempotencyToken))
	}
	assert.Equal(t, "150.25", reqs[0].Body["amount"])
	assert.Equal(t, "d1", reqs[0].Body["contractor_profile_id"])
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, sl.ds)
}

func TestIssuePaymentRetriesAreBounded(t *testing.T) {
	c, fs, _ := newClient(t, fleetapi.Config{PaymentRetries: 2}, func(int, request) (int, any) {
		return http.StatusOK, map[string]string{"status": "in_progress"}
	})

	res, err := c.IssuePayment(context.Background(), creds, model.Payment{
		DriverExternalID: "d1", Amount: decimal.NewFromInt(10), CategoryID: "c",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentInProgress, res.Status)
	assert.Len(t, fs.requests(), 3)

	res2, err := c.IssuePayment(context.Background(), creds, model.Payment{
		DriverExternalID: "d1", Amount: decimal.NewFromInt(10), CategoryID: "c",
	})
	require.NoError(t, err)
	assert.NotEqual(t, res.Token, res2.Token)
}

func TestPaymentStatus(t *testing.T) {
	c, fs, _ := newClient(t, fleetapi.Config{}, func(int, request) (int, any) {
		return http.StatusOK, map[string]string{"status": "failed"}
	})

	res, err := c.PaymentStatus(context.Background(), creds, "tok")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, res.Status)
	assert.Equal(t, "tok", fs.requests()[0].Header.Get(fleetapi.HeaderIdempotencyToken))

	c, _, _ = newClient(t, fleetapi.Config{}, func(int, request) (int, any) {
		return http.StatusOK, map[string]string{"status": "weird"}
	})
	_, err = c.PaymentStatus(context.Background(), creds, "tok")
	assert.True(t, errors.Is(err, model.ErrUnknownPaymentStatus))
}
