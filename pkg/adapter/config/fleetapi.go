// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/momeni/fleetsync/pkg/adapter/config/settings"
	"github.com/momeni/fleetsync/pkg/adapter/fleetapi"
)

// FleetAPI contains the settings of the remote fleet API client.
// Missing items take the fleetapi.Default* values.
type FleetAPI struct {
	BaseURL string `yaml:"base-url"`

	IntegratorID     string `yaml:"integrator-id"`
	IntegratorAPIKey string `yaml:"integrator-api-key"`

	Language string            `yaml:"language"`
	Timeout  *settings.Duration `yaml:"timeout"`

	RequestsPerSecond float64 `yaml:"requests-per-second"`
	Burst             int     `yaml:"burst"`

	MaxAttempts int                `yaml:"max-attempts"`
	BackoffBase *settings.Duration `yaml:"backoff-base"`

	PaymentRetries    int                `yaml:"payment-retries"`
	PaymentRetryDelay *settings.Duration `yaml:"payment-retry-delay"`

	BreakerFailures uint32             `yaml:"breaker-failures"`
	BreakerTimeout  *settings.Duration `yaml:"breaker-timeout"`
}

// ValidateAndNormalize checks the base URL and the numeric limits.
// Durations are left nil when missing, so the client defaults apply.
func (f *FleetAPI) ValidateAndNormalize() error {
	if f.BaseURL == "" {
		f.BaseURL = fleetapi.DefaultBaseURL
	}
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing base-url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("unsupported base-url scheme: %q", u.Scheme)
	}
	switch {
	case f.MaxAttempts < 0:
		return fmt.Errorf("max-attempts (%d) is negative", f.MaxAttempts)
	case f.PaymentRetries < 0:
		return fmt.Errorf(
			"payment-retries (%d) is negative", f.PaymentRetries,
		)
	case f.RequestsPerSecond < 0:
		return fmt.Errorf(
			"requests-per-second (%v) is negative", f.RequestsPerSecond,
		)
	}
	return nil
}

// ClientConfig converts f to the fleetapi.Config struct.
func (f FleetAPI) ClientConfig() fleetapi.Config {
	return fleetapi.Config{
		BaseURL:           f.BaseURL,
		IntegratorID:      f.IntegratorID,
		IntegratorAPIKey:  f.IntegratorAPIKey,
		Language:          f.Language,
		Timeout:           duration(f.Timeout),
		RequestsPerSecond: f.RequestsPerSecond,
		Burst:             f.Burst,
		MaxAttempts:       f.MaxAttempts,
		BackoffBase:       duration(f.BackoffBase),
		PaymentRetries:    f.PaymentRetries,
		PaymentRetryDelay: duration(f.PaymentRetryDelay),
		BreakerFailures:   f.BreakerFailures,
		BreakerTimeout:    duration(f.BreakerTimeout),
	}
}

// NewClient instantiates a fleet API client based on the f settings.
func (f FleetAPI) NewClient(opts ...fleetapi.Option) (*fleetapi.Client, error) {
	return fleetapi.New(f.ClientConfig(), opts...)
}

func duration(d *settings.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return time.Duration(*d)
}
