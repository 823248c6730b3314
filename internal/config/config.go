// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Store    StoreConfig    `koanf:"store"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// SecurityConfig holds token, lockout, rate limit and CORS settings.
type SecurityConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	// TokenTTL is the lifetime of issued tokens. Default: 7 days.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// RevocationEnabled turns on the logout revocation list. Tokens stay
	// stateless when false.
	RevocationEnabled bool `koanf:"revocation_enabled"`
	// RevocationStore is "memory" or "badger".
	RevocationStore string `koanf:"revocation_store"`
	RevocationPath  string `koanf:"revocation_path"`

	LockoutMaxAttempts int           `koanf:"lockout_max_attempts"`
	LockoutWindow      time.Duration `koanf:"lockout_window"`
	LockoutDuration    time.Duration `koanf:"lockout_duration"`

	RateLimitReqs       int           `koanf:"rate_limit_requests"`
	RateLimitWindow     time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled   bool          `koanf:"rate_limit_disabled"`
	AuthRateLimitReqs   int           `koanf:"auth_rate_limit_requests"`
	AuthRateLimitWindow time.Duration `koanf:"auth_rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// StoreConfig holds document store settings.
type StoreConfig struct {
	// Driver is "mongo" or "memory".
	Driver     string `koanf:"driver"`
	URI        string `koanf:"uri"`
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`

	ConnectTimeout         time.Duration `koanf:"connect_timeout"`
	SocketTimeout          time.Duration `koanf:"socket_timeout"`
	ServerSelectionTimeout time.Duration `koanf:"server_selection_timeout"`
	MaxPoolSize            uint64        `koanf:"max_pool_size"`

	// ReconnectDelay is the fixed wait between reconnect attempts.
	ReconnectDelay time.Duration `koanf:"reconnect_delay"`
	HealthInterval time.Duration `koanf:"health_interval"`
}

// CatalogConfig holds upstream movie-data provider settings.
type CatalogConfig struct {
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Timeout           time.Duration `koanf:"timeout"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// Enabled reports whether the catalog proxy has credentials.
func (c CatalogConfig) Enabled() bool {
	return c.APIKey != ""
}

// EventsConfig holds domain event bus settings.
type EventsConfig struct {
	// Driver is "memory" (in-process) or "nats".
	Driver        string        `koanf:"driver"`
	NATSURL       string        `koanf:"nats_url"`
	QueueGroup    string        `koanf:"queue_group"`
	BufferSize    int64         `koanf:"buffer_size"`
	CloseTimeout  time.Duration `koanf:"close_timeout"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order of precedence.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
