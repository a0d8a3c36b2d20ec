// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
	Snapshot  SnapshotConfig  `koanf:"snapshot"`
	Builder   BuilderConfig   `koanf:"builder"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
	SwaggerEnabled  bool          `koanf:"swagger_enabled"`
}

// DatabaseConfig holds the DuckDB order and product store settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
	SeedMockData           bool   `koanf:"seed_mock_data"` // demo catalog and orders on an empty database
	SkipIndexes            bool   `koanf:"skip_indexes"`
}

// RecommendConfig holds query-side tuning.
type RecommendConfig struct {
	AssociationWeight float64       `koanf:"association_weight"`
	PopularityWeight  float64       `koanf:"popularity_weight"`
	DefaultLimit      int           `koanf:"default_limit"`
	MaxLimit          int           `koanf:"max_limit"`
	HistoryOrders     int           `koanf:"history_orders"`
	PerSourceLimit    int           `koanf:"per_source_limit"`
	Concurrency       int           `koanf:"concurrency"`
	LoadTimeout       time.Duration `koanf:"load_timeout"`
	HistoryTimeout    time.Duration `koanf:"history_timeout"`

	// Product lookups during enrichment.
	ProductCacheSize int           `koanf:"product_cache_size"`
	ProductCacheTTL  time.Duration `koanf:"product_cache_ttl"`

	// Circuit breakers around the order and product stores.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
}

// SnapshotConfig selects where knowledge snapshots are persisted.
type SnapshotConfig struct {
	Backend string `koanf:"backend"` // file or badger
	Path    string `koanf:"path"`    // directory; "" with badger = in-memory
	Keep    int    `koanf:"keep"`    // versions retained after publish
}

// BuilderConfig controls the association builder.
type BuilderConfig struct {
	Enabled            bool          `koanf:"enabled"` // run on a schedule inside the server
	Interval           time.Duration `koanf:"interval"`
	RunOnStartup       bool          `koanf:"run_on_startup"`
	Timeout            time.Duration `koanf:"timeout"`
	QualifyingStatuses []string      `koanf:"qualifying_statuses"`
}

// EventsConfig controls snapshot publication events between replicas.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Backend string `koanf:"backend"` // gochannel or nats
	Topic   string `koanf:"topic"`

	NATSURL        string `koanf:"nats_url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	EmbeddedPort   int    `koanf:"embedded_port"`
	QueueGroup     string `koanf:"queue_group"`

	// Event-triggered refreshes are limited to one per RefreshInterval with
	// bursts of RefreshBurst.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	RefreshBurst    int           `koanf:"refresh_burst"`
}

// SecurityConfig guards the admin endpoints and shapes the public ones.
type SecurityConfig struct {
	AuthMode  string `koanf:"auth_mode"` // jwt, basic or none
	JWTSecret string `koanf:"jwt_secret"`
	JWTIssuer string `koanf:"jwt_issuer"`

	// Basic auth admits one service account with BasicRole.
	BasicUsername string `koanf:"basic_username"`
	BasicPassword string `koanf:"basic_password"`
	BasicRole     string `koanf:"basic_role"`

	CasbinModelPath  string `koanf:"casbin_model_path"`  // "" = embedded model
	CasbinPolicyPath string `koanf:"casbin_policy_path"` // "" = embedded policy
	DefaultRole      string `koanf:"default_role"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
