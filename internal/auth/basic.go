// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted basic auth password.
const MinPasswordLength = 12

// BasicAuthManager verifies HTTP Basic credentials for a single service
// account, typically the cron job or deploy script that triggers rebuilds.
type BasicAuthManager struct {
	username     string
	passwordHash []byte
	role         string
}

// NewBasicAuthManager hashes password once at startup. An empty role
// defaults to RoleOperator.
func NewBasicAuthManager(username, password, role string) (*BasicAuthManager, error) {
	if username == "" {
		return nil, fmt.Errorf("BASIC_AUTH_USERNAME is required")
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("BASIC_AUTH_PASSWORD must be at least %d characters", MinPasswordLength)
	}
	if role == "" {
		role = RoleOperator
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &BasicAuthManager{
		username:     username,
		passwordHash: hash,
		role:         role,
	}, nil
}

// Authenticate checks an Authorization header value and returns the
// service account subject.
func (m *BasicAuthManager) Authenticate(header string) (*AuthSubject, error) {
	if header == "" {
		return nil, ErrNoCredentials
	}
	scheme, encoded, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return nil, fmt.Errorf("%w: malformed authorization header", ErrInvalidCredentials)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable credentials", ErrInvalidCredentials)
	}
	username, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil, fmt.Errorf("%w: malformed credentials", ErrInvalidCredentials)
	}

	// Both checks always run.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return nil, fmt.Errorf("%w: wrong username or password", ErrInvalidCredentials)
	}

	return &AuthSubject{
		ID:       m.username,
		Username: m.username,
		Roles:    []string{m.role},
	}, nil
}
