// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

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
	"/etc/basketrec/config.yaml",
	"/etc/basketrec/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
			SwaggerEnabled:  true,
		},
		Database: DatabaseConfig{
			Path:                   "/data/basketrec.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
			SeedMockData:           false,
		},
		Recommend: RecommendConfig{
			AssociationWeight:       10,
			PopularityWeight:        2,
			DefaultLimit:            10,
			MaxLimit:                100,
			HistoryOrders:           5,
			PerSourceLimit:          5,
			Concurrency:             4,
			LoadTimeout:             30 * time.Second,
			HistoryTimeout:          5 * time.Second,
			ProductCacheSize:        10000,
			ProductCacheTTL:         5 * time.Minute,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
			BreakerInterval:         time.Minute,
		},
		Snapshot: SnapshotConfig{
			Backend: "file",
			Path:    "/data/knowledge",
			Keep:    3,
		},
		Builder: BuilderConfig{
			Enabled:            true,
			Interval:           24 * time.Hour,
			RunOnStartup:       false,
			Timeout:            10 * time.Minute,
			QualifyingStatuses: []string{"Delivered", "Preparing", "Out for Delivery"},
		},
		Events: EventsConfig{
			Enabled:         true,
			Backend:         "gochannel",
			Topic:           "knowledge.published",
			NATSURL:         "nats://127.0.0.1:4222",
			EmbeddedServer:  false,
			EmbeddedPort:    4222,
			QueueGroup:      "",
			RefreshInterval: 10 * time.Second,
			RefreshBurst:    1,
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTIssuer:         "basketrec",
			BasicRole:         "operator",
			DefaultRole:       "viewer",
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration from, in increasing priority: built-in
// defaults, an optional YAML file, and environment variables. The result
// is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DUCKDB_PATH -> database.path, HTTP_PORT -> server.port
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
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

// sliceConfigPaths are parsed as comma-separated lists when they arrive as
// strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"builder.qualifying_statuses",
}

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
		if len(trimmed) == 0 {
			continue
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
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",
	"swagger_enabled":  "server.swagger_enabled",

	// Database
	"duckdb_path":                     "database.path",
	"duckdb_max_memory":               "database.max_memory",
	"duckdb_threads":                  "database.threads",
	"duckdb_preserve_insertion_order": "database.preserve_insertion_order",
	"seed_mock_data":                  "database.seed_mock_data",
	"duckdb_skip_indexes":             "database.skip_indexes",

	// Recommendation queries
	"recommend_association_weight": "recommend.association_weight",
	"recommend_popularity_weight":  "recommend.popularity_weight",
	"recommend_default_limit":      "recommend.default_limit",
	"recommend_max_limit":          "recommend.max_limit",
	"recommend_history_orders":     "recommend.history_orders",
	"recommend_per_source_limit":   "recommend.per_source_limit",
	"recommend_concurrency":        "recommend.concurrency",
	"recommend_load_timeout":       "recommend.load_timeout",
	"recommend_history_timeout":    "recommend.history_timeout",
	"product_cache_size":           "recommend.product_cache_size",
	"product_cache_ttl":            "recommend.product_cache_ttl",
	"breaker_failure_threshold":    "recommend.breaker_failure_threshold",
	"breaker_timeout":              "recommend.breaker_timeout",
	"breaker_interval":             "recommend.breaker_interval",

	// Snapshots
	"snapshot_backend": "snapshot.backend",
	"snapshot_path":    "snapshot.path",
	"snapshot_keep":    "snapshot.keep",

	// Builder
	"builder_enabled":        "builder.enabled",
	"builder_interval":       "builder.interval",
	"builder_run_on_startup": "builder.run_on_startup",
	"builder_timeout":        "builder.timeout",
	"qualifying_statuses":    "builder.qualifying_statuses",

	// Events
	"events_enabled":          "events.enabled",
	"events_backend":          "events.backend",
	"events_topic":            "events.topic",
	"nats_url":                "events.nats_url",
	"nats_embedded":           "events.embedded_server",
	"nats_embedded_port":      "events.embedded_port",
	"nats_queue_group":        "events.queue_group",
	"events_refresh_interval": "events.refresh_interval",
	"events_refresh_burst":    "events.refresh_burst",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"basic_auth_username": "security.basic_username",
	"basic_auth_password": "security.basic_password",
	"basic_auth_role":     "security.basic_role",
	"casbin_model_path":   "security.casbin_model_path",
	"casbin_policy_path":  "security.casbin_policy_path",
	"default_role":        "security.default_role",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unknown variables map to "" and are skipped by the provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
