// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package config

import (
	"errors"
	"fmt"

	"github.com/tomtom215/endless/internal/logging"
	"github.com/tomtom215/endless/internal/recommend/storage"
	"github.com/tomtom215/endless/internal/validation"
)

// Validate checks field ranges and cross-section rules.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if c.Catalog.Path == "" && c.Catalog.URL == "" {
		return errors.New("catalog: one of path or url is required")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	if storage.Backend(c.Storage.Backend) != storage.BackendMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage: path is required for the %s backend", c.Storage.Backend)
	}
	if !c.Server.RateLimitDisabled && c.Server.RateLimitReqs < 1 {
		return errors.New("server: rate_limit_reqs must be positive unless rate limiting is disabled")
	}
	if c.Sessions.JanitorInterval > c.Sessions.IdleTimeout {
		return fmt.Errorf("sessions: janitor_interval %s exceeds idle_timeout %s",
			c.Sessions.JanitorInterval, c.Sessions.IdleTimeout)
	}

	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
