// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// minJWTSecretLength is the shortest HS256 secret accepted.
const minJWTSecretLength = 32

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validEnvironments = map[string]bool{
	"development": true,
	"production":  true,
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := &c.Security
	if s.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(s.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if s.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if s.RevocationEnabled {
		switch s.RevocationStore {
		case "memory":
		case "badger":
			if s.RevocationPath == "" {
				return fmt.Errorf("REVOCATION_PATH is required when REVOCATION_STORE is badger")
			}
		default:
			return fmt.Errorf("REVOCATION_STORE must be memory or badger, got %q", s.RevocationStore)
		}
	}
	if s.LockoutMaxAttempts < 0 {
		return fmt.Errorf("LOCKOUT_MAX_ATTEMPTS must not be negative")
	}
	if s.LockoutMaxAttempts > 0 && (s.LockoutWindow <= 0 || s.LockoutDuration <= 0) {
		return fmt.Errorf("LOCKOUT_WINDOW and LOCKOUT_DURATION must be positive when lockout is enabled")
	}
	if !s.RateLimitDisabled {
		if s.RateLimitReqs <= 0 || s.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
		}
		if s.AuthRateLimitReqs <= 0 || s.AuthRateLimitWindow <= 0 {
			return fmt.Errorf("AUTH_RATE_LIMIT_REQUESTS and AUTH_RATE_LIMIT_WINDOW must be positive")
		}
	}
	if c.IsProduction() {
		for _, origin := range s.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	s := &c.Store
	switch s.Driver {
	case "memory":
		return nil
	case "mongo":
	default:
		return fmt.Errorf("STORE_DRIVER must be mongo or memory, got %q", s.Driver)
	}
	if !strings.HasPrefix(s.URI, "mongodb://") && !strings.HasPrefix(s.URI, "mongodb+srv://") {
		return fmt.Errorf("MONGODB_URI must start with mongodb:// or mongodb+srv://")
	}
	if s.Collection == "" {
		return fmt.Errorf("MONGODB_COLLECTION must not be empty")
	}
	if s.ConnectTimeout <= 0 || s.SocketTimeout <= 0 || s.ServerSelectionTimeout <= 0 {
		return fmt.Errorf("store timeouts must be positive")
	}
	if s.ReconnectDelay <= 0 {
		return fmt.Errorf("STORE_RECONNECT_DELAY must be positive")
	}
	if s.HealthInterval <= 0 {
		return fmt.Errorf("STORE_HEALTH_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if !c.Catalog.Enabled() {
		return nil
	}
	if err := validateHTTPURL(c.Catalog.BaseURL, "OMDB_BASE_URL"); err != nil {
		return err
	}
	if c.Catalog.RequestsPerSecond <= 0 || c.Catalog.Burst <= 0 {
		return fmt.Errorf("CATALOG_RATE_LIMIT and CATALOG_RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Driver {
	case "memory":
		return nil
	case "nats":
		u, err := url.Parse(c.Events.NATSURL)
		if err != nil {
			return fmt.Errorf("NATS_URL failed to parse: %w", err)
		}
		if u.Scheme != "nats" && u.Scheme != "tls" {
			return fmt.Errorf("NATS_URL scheme must be nats or tls, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("NATS_URL host is required")
		}
		return nil
	default:
		return fmt.Errorf("EVENTS_DRIVER must be memory or nats, got %q", c.Events.Driver)
	}
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL accepts http(s) base URLs without query strings.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", fieldName)
	}
	return nil
}
