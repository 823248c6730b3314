// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads and validates Marquee configuration.
//
// Configuration is layered with koanf: struct defaults, then an optional
// YAML file, then environment variables. Only the variables listed in
// envMappings are read from the environment.
//
// Example config.yaml:
//
//	server:
//	  port: 5000
//	security:
//	  jwt_secret: "change-me-to-at-least-32-characters!!"
//	  token_ttl: 168h
//	  revocation_enabled: true
//	  revocation_store: badger
//	store:
//	  uri: mongodb://127.0.0.1:27017/netflix-app
//	catalog:
//	  api_key: your-omdb-key
//
// Frequently used environment variables:
//
//   - PORT, HTTP_HOST, ENVIRONMENT
//   - JWT_SECRET (required, at least 32 characters), TOKEN_TTL
//   - MONGODB_URI, MONGODB_DATABASE, STORE_DRIVER
//   - OMDB_API_KEY, OMDB_BASE_URL
//   - EVENTS_DRIVER, NATS_URL
//   - LOG_LEVEL, LOG_FORMAT
package config
