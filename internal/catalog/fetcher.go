// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/endless/internal/metrics"
)

// ErrUnexpectedStatus is returned when the catalog endpoint answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("unexpected catalog response status")

// BreakerConfig configures the circuit breaker around remote fetches.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Consecutive failures before opening
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "catalog-fetch",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	URL     string
	Timeout time.Duration
	Breaker BreakerConfig
	Options LoadOptions
}

// Fetcher downloads master.json from a remote endpoint.
type Fetcher struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]Record]
	opts    LoadOptions
	logger  zerolog.Logger
}

// NewFetcher creates a fetcher. A nil client uses a client with cfg.Timeout.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFetcher(cfg FetcherConfig, client *http.Client, logger zerolog.Logger) (*Fetcher, error) {
	if cfg.URL == "" {
		return nil, errors.New("catalog url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = DefaultBreakerConfig()
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	f := &Fetcher{
		url:    cfg.URL,
		client: client,
		opts:   cfg.Options,
		logger: logger.With().Str("component", "catalog_fetcher").Logger(),
	}

	f.breaker = gobreaker.NewCircuitBreaker[[]Record](gobreaker.Settings{
		Name:        cfg.Breaker.Name,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("catalog circuit breaker state changed")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})

	return f, nil
}

// State returns the circuit breaker state for health reporting.
func (f *Fetcher) State() string {
	return f.breaker.State().String()
}

// Fetch downloads and decodes the catalog.
func (f *Fetcher) Fetch(ctx context.Context) ([]Record, error) {
	start := time.Now()
	records, err := f.breaker.Execute(func() ([]Record, error) {
		return f.fetchOnce(ctx)
	})

	status := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "rejected"
	case err != nil:
		status = "error"
	}
	metrics.RecordCatalogFetch(status, time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	f.logger.Info().
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("catalog fetched")
	return records, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return Decode(resp.Body, f.opts)
}
