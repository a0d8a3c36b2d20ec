// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"
)

// Rate limit bounds.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

const (
	minJWTSecretLength     = 32
	minBasicPasswordLength = 12
)

var validEnvironments = map[string]bool{"development": true, "staging": true, "production": true}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateRecommend,
		c.validateSnapshot,
		c.validateBuilder,
		c.validateEvents,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	switch {
	case r.AssociationWeight <= 0:
		return fmt.Errorf("RECOMMEND_ASSOCIATION_WEIGHT must be positive")
	case r.PopularityWeight < 0:
		return fmt.Errorf("RECOMMEND_POPULARITY_WEIGHT must not be negative")
	case r.DefaultLimit <= 0:
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be positive")
	case r.MaxLimit < r.DefaultLimit:
		return fmt.Errorf("RECOMMEND_MAX_LIMIT must be at least RECOMMEND_DEFAULT_LIMIT")
	case r.HistoryOrders <= 0:
		return fmt.Errorf("RECOMMEND_HISTORY_ORDERS must be positive")
	case r.PerSourceLimit <= 0:
		return fmt.Errorf("RECOMMEND_PER_SOURCE_LIMIT must be positive")
	case r.Concurrency <= 0:
		return fmt.Errorf("RECOMMEND_CONCURRENCY must be positive")
	case r.LoadTimeout <= 0, r.HistoryTimeout <= 0:
		return fmt.Errorf("recommend timeouts must be positive")
	case r.ProductCacheSize < 0:
		return fmt.Errorf("PRODUCT_CACHE_SIZE must not be negative")
	case r.BreakerFailureThreshold == 0:
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be positive")
	}
	return nil
}

func (c *Config) validateSnapshot() error {
	switch c.Snapshot.Backend {
	case "file":
		if c.Snapshot.Path == "" {
			return fmt.Errorf("SNAPSHOT_PATH is required for the file backend")
		}
	case "badger":
	default:
		return fmt.Errorf("SNAPSHOT_BACKEND must be file or badger, got %q", c.Snapshot.Backend)
	}
	if c.Snapshot.Keep < 1 {
		return fmt.Errorf("SNAPSHOT_KEEP must be at least 1")
	}
	return nil
}

func (c *Config) validateBuilder() error {
	if len(c.Builder.QualifyingStatuses) == 0 {
		return fmt.Errorf("QUALIFYING_STATUSES must list at least one order status")
	}
	if c.Builder.Timeout <= 0 {
		return fmt.Errorf("BUILDER_TIMEOUT must be positive")
	}
	if c.Builder.Enabled && c.Builder.Interval < time.Minute {
		return fmt.Errorf("BUILDER_INTERVAL must be at least 1m")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required")
	}
	if c.Events.RefreshInterval < 0 || c.Events.RefreshBurst < 1 {
		return fmt.Errorf("EVENTS_REFRESH_INTERVAL must not be negative and EVENTS_REFRESH_BURST must be at least 1")
	}
	switch c.Events.Backend {
	case "gochannel":
		return nil
	case "nats":
		if err := validateNATSURL(c.Events.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
		if c.Events.EmbeddedServer && (c.Events.EmbeddedPort < 1 || c.Events.EmbeddedPort > 65535) {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535")
		}
		return nil
	default:
		return fmt.Errorf("EVENTS_BACKEND must be gochannel or nats, got %q", c.Events.Backend)
	}
}

// validateNATSURL accepts nats, tls, ws and wss URLs with a host.
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222)")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed in production")
		}
	case "jwt":
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
		}
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters for security", minJWTSecretLength)
		}
	case "basic":
		if c.Security.BasicUsername == "" {
			return fmt.Errorf("BASIC_AUTH_USERNAME is required when AUTH_MODE is basic")
		}
		if len(c.Security.BasicPassword) < minBasicPasswordLength {
			return fmt.Errorf("BASIC_AUTH_PASSWORD must be at least %d characters", minBasicPasswordLength)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt, basic")
	}

	if c.Security.AuthMode != "none" && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with authentication enabled; " +
			"set specific origins or use ENVIRONMENT=development")
	}

	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	return slices.Contains(c.Security.CORSOrigins, "*")
}

// ShouldWarnAboutCORS reports a wildcard CORS origin combined with
// authentication, which is allowed outside production but worth logging.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthMode != "none" && c.hasWildcardCORS()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}
