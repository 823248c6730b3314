// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	cfg.Store.Database = "netflix-app"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults with secret",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "PORT",
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "short" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "unknown revocation store",
			mutate:  func(c *Config) { c.Security.RevocationEnabled = true; c.Security.RevocationStore = "redis" },
			wantErr: "REVOCATION_STORE",
		},
		{
			name: "badger revocation without path",
			mutate: func(c *Config) {
				c.Security.RevocationEnabled = true
				c.Security.RevocationStore = "badger"
				c.Security.RevocationPath = ""
			},
			wantErr: "REVOCATION_PATH",
		},
		{
			name:    "bad mongo scheme",
			mutate:  func(c *Config) { c.Store.URI = "postgres://localhost" },
			wantErr: "MONGODB_URI",
		},
		{
			name:   "memory store skips mongo checks",
			mutate: func(c *Config) { c.Store.Driver = "memory"; c.Store.URI = "" },
		},
		{
			name:    "catalog base url without scheme",
			mutate:  func(c *Config) { c.Catalog.APIKey = "k"; c.Catalog.BaseURL = "omdbapi.com" },
			wantErr: "OMDB_BASE_URL",
		},
		{
			name:    "nats driver with bad url",
			mutate:  func(c *Config) { c.Events.Driver = "nats"; c.Events.NATSURL = "http://localhost:4222" },
			wantErr: "NATS_URL",
		},
		{
			name:    "wildcard cors in production",
			mutate:  func(c *Config) { c.Server.Environment = "production" },
			wantErr: "CORS_ORIGINS",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
