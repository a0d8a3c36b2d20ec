// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/tomtom215/basketrec/internal/cache"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects and actions used by the API.
const (
	ObjectRecommendations = "recommendations"
	ObjectStatus          = "status"
	ObjectKnowledge       = "knowledge"

	ActionRead    = "read"
	ActionRefresh = "refresh"
	ActionRebuild = "rebuild"
)

// EnforcerConfig configures the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath and PolicyPath override the embedded files when set.
	ModelPath  string
	PolicyPath string

	// DefaultRole applies to subjects whose token carries no roles.
	DefaultRole string

	CacheSize int
	CacheTTL  time.Duration
}

// DefaultEnforcerConfig returns the embedded RBAC setup.
func DefaultEnforcerConfig() EnforcerConfig {
	return EnforcerConfig{
		DefaultRole: "viewer",
		CacheSize:   1000,
		CacheTTL:    5 * time.Minute,
	}
}

// Enforcer answers role-based access questions. Decisions are cached per
// (role, object, action).
type Enforcer struct {
	cfg      EnforcerConfig
	enforcer *casbin.SyncedEnforcer
	cache    *cache.LRU[bool]
}

// NewEnforcer loads the model and policy.
func NewEnforcer(cfg EnforcerConfig) (*Enforcer, error) {
	var (
		m   model.Model
		err error
	)
	if cfg.ModelPath != "" {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var adapter persist.Adapter
	if cfg.PolicyPath != "" {
		if _, err := os.Stat(cfg.PolicyPath); err != nil {
			return nil, fmt.Errorf("casbin policy: %w", err)
		}
		adapter = fileadapter.NewAdapter(cfg.PolicyPath)
	} else {
		adapter = stringadapter.NewAdapter(stripComments(embeddedPolicy))
	}

	e, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	var decisions *cache.LRU[bool]
	if cfg.CacheSize > 0 {
		decisions = cache.NewLRU[bool](cfg.CacheSize, cfg.CacheTTL)
	}
	return &Enforcer{cfg: cfg, enforcer: e, cache: decisions}, nil
}

// Enforce reports whether role may perform action on object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	key := role + "\x00" + object + "\x00" + action
	if e.cache != nil {
		if allowed, ok := e.cache.Get(key); ok {
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	if e.cache != nil {
		e.cache.Add(key, allowed)
	}
	return allowed, nil
}

// EnforceRoles reports whether any of roles is allowed. An empty role list
// is evaluated as DefaultRole.
func (e *Enforcer) EnforceRoles(roles []string, object, action string) (bool, error) {
	if len(roles) == 0 && e.cfg.DefaultRole != "" {
		roles = []string{e.cfg.DefaultRole}
	}
	for _, role := range roles {
		allowed, err := e.Enforce(role, object, action)
		if err != nil {
			return false, err
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// Reload re-reads the policy and drops cached decisions.
func (e *Enforcer) Reload() error {
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("reload policy: %w", err)
	}
	if e.cache != nil {
		e.cache.Clear()
	}
	return nil
}

// stripComments drops blank and # lines, which the string adapter does not
// skip.
func stripComments(policy string) string {
	var b strings.Builder
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
