// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fleetapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/fleetsync/pkg/adapter/metrics"
	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/sony/gobreaker/v2"
)

const (
	maxBodySize  = 64 << 20
	maxErrorBody = 512
)

// errServer marks the 5xx responses for the circuit breaker.
var errServer = errors.New("server error")

type response struct {
	status int
	body   []byte
}

// call describes one logical request, which may be sent a few times
// if it is rate limited.
type call struct {
	endpoint string // metrics label
	method   string
	path     string
	query    url.Values
	header   http.Header
	body     any
}

// do sends cl on behalf of the park with creds credentials and
// decodes its successful response into out (if out is not nil).
func (c *Client) do(
	ctx context.Context, creds fleet.Credentials, cl call, out any,
) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	var payload []byte
	if cl.body != nil {
		var err error
		payload, err = json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", cl.path, err)
		}
	}
	for attempt := 1; ; attempt++ {
		resp, err := c.attempt(ctx, creds, cl, payload)
		if err != nil {
			return fmt.Errorf("%s %s: %w", cl.method, cl.path, err)
		}
		switch resp.status {
		case http.StatusOK:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(resp.body, out); err != nil {
				return fmt.Errorf("decoding %s response: %w", cl.path, err)
			}
			return nil
		case http.StatusTooManyRequests:
		default:
			se := &fleet.StatusError{
				Method:     cl.method,
				Path:       cl.path,
				StatusCode: resp.status,
				Body:       truncate(resp.body),
			}
			log.Error(
				ctx, "fleet API request failed",
				log.Park(creds.ParkID),
				slog.String("path", cl.path),
				slog.Int("status", resp.status),
				slog.String("body", se.Body),
			)
			return se
		}
		if attempt >= c.cfg.MaxAttempts {
			return fmt.Errorf(
				"%s %s: %d attempts: %w",
				cl.method, cl.path, attempt, fleet.ErrRateLimited,
			)
		}
		d := c.cfg.BackoffBase << (attempt - 1)
		log.Warn(
			ctx, "fleet API rate limited the request",
			log.Park(creds.ParkID),
			slog.String("path", cl.path),
			slog.Int("attempt", attempt),
			slog.Duration("delay", d),
		)
		metrics.FleetRetries.WithLabelValues(cl.endpoint).Inc()
		if err := c.sleep(ctx, d); err != nil {
			return fmt.Errorf("waiting to retry %s: %w", cl.path, err)
		}
	}
}

// attempt sends the request once, through the rate limiter and the
// circuit breaker. Non-200 responses are returned with a nil error.
func (c *Client) attempt(
	ctx context.Context, creds fleet.Credentials, cl call, payload []byte,
) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.breaker.Execute(func() (*response, error) {
		resp, err := c.send(ctx, creds, cl, payload)
		if err == nil && resp.status >= http.StatusInternalServerError {
			return resp, errServer
		}
		return resp, err
	})
	switch {
	case errors.Is(err, errServer):
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %w", fleet.ErrUnavailable, err)
	case err != nil:
		return nil, err
	}
	return resp, nil
}

func (c *Client) send(
	ctx context.Context, creds fleet.Credentials, cl call, payload []byte,
) (*response, error) {
	u := c.base.JoinPath(cl.path)
	u.RawQuery = cl.query.Encode()
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req.Header, creds)
	for k, v := range cl.header {
		req.Header[k] = v
	}
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.ObserveRequest(cl.endpoint, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	metrics.ObserveRequest(cl.endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &response{status: resp.StatusCode, body: b}, nil
}

func (c *Client) authorize(h http.Header, creds fleet.Credentials) {
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")
	h.Set("Accept-Language", c.cfg.Language)
	h.Set("X-Client-ID", creds.ClientID)
	h.Set("X-Park-ID", creds.ParkID)
	h.Set("X-API-Key", creds.APIKey)
	if c.cfg.IntegratorID != "" {
		h.Set("X-Integrator-ID", c.cfg.IntegratorID)
	}
	if c.cfg.IntegratorAPIKey != "" {
		h.Set("X-Integrator-API-Key", c.cfg.IntegratorAPIKey)
	}
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
