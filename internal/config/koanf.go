// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			TokenTTL:            7 * 24 * time.Hour,
			RevocationEnabled:   false,
			RevocationStore:     "memory",
			RevocationPath:      "/data/revocations",
			LockoutMaxAttempts:  5,
			LockoutWindow:       15 * time.Minute,
			LockoutDuration:     15 * time.Minute,
			RateLimitReqs:       100,
			RateLimitWindow:     time.Minute,
			AuthRateLimitReqs:   10,
			AuthRateLimitWindow: time.Minute,
			CORSOrigins:         []string{"*"},
		},
		Store: StoreConfig{
			Driver:                 "mongo",
			URI:                    "mongodb://127.0.0.1:27017/netflix-app",
			Database:               "",
			Collection:             "accounts",
			ConnectTimeout:         10 * time.Second,
			SocketTimeout:          45 * time.Second,
			ServerSelectionTimeout: 5 * time.Second,
			MaxPoolSize:            20,
			ReconnectDelay:         5 * time.Second,
			HealthInterval:         10 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL:           "https://www.omdbapi.com",
			Timeout:           10 * time.Second,
			CacheTTL:          10 * time.Minute,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Events: EventsConfig{
			Driver:        "memory",
			NATSURL:       "nats://127.0.0.1:4222",
			QueueGroup:    "marquee",
			BufferSize:    256,
			CloseTimeout:  10 * time.Second,
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration in three layers:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if cfg.Store.Database == "" {
		cfg.Store.Database = databaseFromURI(cfg.Store.URI)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"port":             "server.port",
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"jwt_secret":               "security.jwt_secret",
	"token_ttl":                "security.token_ttl",
	"revocation_enabled":       "security.revocation_enabled",
	"revocation_store":         "security.revocation_store",
	"revocation_path":          "security.revocation_path",
	"lockout_max_attempts":     "security.lockout_max_attempts",
	"lockout_window":           "security.lockout_window",
	"lockout_duration":         "security.lockout_duration",
	"rate_limit_requests":      "security.rate_limit_requests",
	"rate_limit_window":        "security.rate_limit_window",
	"disable_rate_limit":       "security.rate_limit_disabled",
	"auth_rate_limit_requests": "security.auth_rate_limit_requests",
	"auth_rate_limit_window":   "security.auth_rate_limit_window",
	"cors_origins":             "security.cors_origins",

	"store_driver":                     "store.driver",
	"mongodb_uri":                      "store.uri",
	"mongodb_database":                 "store.database",
	"mongodb_collection":               "store.collection",
	"mongodb_connect_timeout":          "store.connect_timeout",
	"mongodb_socket_timeout":           "store.socket_timeout",
	"mongodb_server_selection_timeout": "store.server_selection_timeout",
	"mongodb_max_pool_size":            "store.max_pool_size",
	"store_reconnect_delay":            "store.reconnect_delay",
	"store_health_interval":            "store.health_interval",

	"omdb_base_url":            "catalog.base_url",
	"omdb_api_key":             "catalog.api_key",
	"catalog_timeout":          "catalog.timeout",
	"catalog_cache_ttl":        "catalog.cache_ttl",
	"catalog_rate_limit":       "catalog.requests_per_second",
	"catalog_rate_limit_burst": "catalog.burst",

	"events_driver":      "events.driver",
	"nats_url":           "events.nats_url",
	"nats_queue_group":   "events.queue_group",
	"events_buffer_size": "events.buffer_size",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// databaseFromURI extracts the path component of a mongodb:// URI, which
// names the default database. Falls back to "marquee".
func databaseFromURI(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return "marquee"
	}
	db := rest[slash+1:]
	if q := strings.IndexByte(db, '?'); q >= 0 {
		db = db[:q]
	}
	if db == "" {
		return "marquee"
	}
	return db
}
