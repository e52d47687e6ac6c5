// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fleetapi implements the fleet.API port over the HTTP fleet
// API. All requests of a Client share one rate limiter and one circuit
// breaker. Rate-limit responses (HTTP 429) are retried with an
// exponential backoff, while other non-200 responses are returned as
// *fleet.StatusError without any retry.
//
// The circuit breaker only counts the server errors (HTTP 5xx) and
// the network errors, so a park with revoked credentials can not open
// it for the other parks.
package fleetapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/fleetsync/pkg/adapter/metrics"
	"github.com/momeni/fleetsync/pkg/core/fleet"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Default values of the Config fields.
const (
	DefaultBaseURL           = "https://fleet-api.taxi.yandex.net"
	DefaultLanguage          = "ru"
	DefaultTimeout           = 30 * time.Second
	DefaultMaxAttempts       = 5
	DefaultBackoffBase       = time.Second
	DefaultPaymentRetries    = 3
	DefaultPaymentRetryDelay = time.Second
	DefaultBreakerFailures   = 5
	DefaultBreakerTimeout    = 30 * time.Second
)

const breakerName = "fleet-api"

// Config contains the fleet API client settings. Zero values are
// replaced by their defaults.
type Config struct {
	BaseURL string

	// IntegratorID and IntegratorAPIKey are sent with all requests
	// when they are not empty.
	IntegratorID     string
	IntegratorAPIKey string

	Language string        // Accept-Language header value
	Timeout  time.Duration // per HTTP request

	// RequestsPerSecond limits the request rate of the whole client.
	// Zero disables the client side limiting.
	RequestsPerSecond float64
	Burst             int

	// MaxAttempts is the maximum number of requests which are sent
	// for one call while the API responds with HTTP 429. The delay
	// between the k-th and the (k+1)-th attempts is
	// BackoffBase * 2^(k-1).
	MaxAttempts int
	BackoffBase time.Duration

	// PaymentRetries is the number of times that an in_progress
	// payment is re-submitted with the same idempotency token before
	// its last status is returned to the caller.
	PaymentRetries    int
	PaymentRetryDelay time.Duration

	// The breaker opens after BreakerFailures consecutive failures
	// and stays open for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func (cfg *Config) normalize() error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.PaymentRetries == 0 {
		cfg.PaymentRetries = DefaultPaymentRetries
	}
	if cfg.PaymentRetryDelay == 0 {
		cfg.PaymentRetryDelay = DefaultPaymentRetryDelay
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = DefaultBreakerFailures
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = DefaultBreakerTimeout
	}
	switch {
	case cfg.MaxAttempts < 1:
		return fmt.Errorf("max attempts (%d) must be positive", cfg.MaxAttempts)
	case cfg.BackoffBase < 0:
		return fmt.Errorf("backoff base (%v) is negative", cfg.BackoffBase)
	case cfg.PaymentRetries < 0:
		return fmt.Errorf("payment retries (%d) is negative", cfg.PaymentRetries)
	case cfg.RequestsPerSecond < 0:
		return fmt.Errorf("requests per second (%v) is negative", cfg.RequestsPerSecond)
	}
	return nil
}

// Client is a fleet API client. It is safe for concurrent use.
type Client struct {
	cfg      Config
	base     *url.URL
	hc       *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[*response]
	sleep    func(ctx context.Context, d time.Duration) error
	newToken func() string
}

var _ fleet.API = (*Client)(nil)

// Option represents an optional setting of the Client.
type Option func(c *Client) error

// WithHTTPClient replaces the HTTP client which sends the requests.
// The Config.Timeout is ignored in this case.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client is nil")
		}
		c.hc = hc
		return nil
	}
}

// WithSleep replaces the function which waits between the retries.
// The sleep function must return early with the ctx error if ctx is
// cancelled.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) error {
		c.sleep = sleep
		return nil
	}
}

// WithTokens replaces the generator of the payment idempotency
// tokens, which defaults to random UUIDs.
func WithTokens(newToken func() string) Option {
	return func(c *Client) error {
		c.newToken = newToken
		return nil
	}
}

// New creates a fleet API client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid fleet API config: %w", err)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := max(cfg.Burst, 1)
	c := &Client{
		cfg:      cfg,
		base:     base,
		hc:       &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(limit, burst),
		sleep:    sleepCtx,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.breaker = newBreaker(cfg)
	return c, nil
}

func newBreaker(cfg Config) *gobreaker.CircuitBreaker[*response] {
	metrics.SetBreakerState(breakerName, gobreaker.StateClosed)
	return gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(
				context.Background(), "circuit breaker state is changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.SetBreakerState(name, to)
		},
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
