// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package auth

import (
	"context"
	"errors"
	"slices"
)

// AuthMode is the authentication strategy.
type AuthMode string

const (
	// AuthModeNone treats every request as an anonymous administrator.
	// Only allowed outside production.
	AuthModeNone AuthMode = "none"

	// AuthModeJWT requires HS256 bearer tokens.
	AuthModeJWT AuthMode = "jwt"

	// AuthModeBasic admits a single service account over HTTP Basic.
	AuthModeBasic AuthMode = "basic"
)

// Built-in roles, lowest to highest.
const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// ParseAuthMode converts a config string to an AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "none", "":
		return AuthModeNone, nil
	case "jwt":
		return AuthModeJWT, nil
	case "basic":
		return AuthModeBasic, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

// Authentication errors.
var (
	ErrNoCredentials      = errors.New("no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpiredCredentials = errors.New("credentials expired")
)

// AuthSubject is the authenticated caller.
type AuthSubject struct {
	// ID is the token subject. For shoppers it is also the user id whose
	// order history drives personalized recommendations.
	ID       string
	Username string
	Roles    []string
	Issuer   string

	// Anonymous is set in AuthModeNone.
	Anonymous bool
}

// HasRole reports whether the subject holds role.
func (s *AuthSubject) HasRole(role string) bool {
	return slices.Contains(s.Roles, role)
}

type contextKey string

const subjectContextKey contextKey = "auth-subject"

// ContextWithSubject stores s in ctx.
func ContextWithSubject(ctx context.Context, s *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectContextKey, s)
}

// GetAuthSubject returns the subject stored by the middleware, or nil.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	s, _ := ctx.Value(subjectContextKey).(*AuthSubject)
	return s
}

func anonymousSubject() *AuthSubject {
	return &AuthSubject{
		ID:        "anonymous",
		Username:  "anonymous",
		Roles:     []string{RoleAdmin},
		Anonymous: true,
	}
}
