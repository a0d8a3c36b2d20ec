// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package auth authenticates API callers with HS256 JWT bearer tokens or,
// for a single service account, HTTP Basic credentials checked against a
// bcrypt hash.
//
// Tokens carry the caller's id in the "sub" claim and its roles in "roles"
// (or a single "role"). The middleware stores the resulting AuthSubject in
// the request context, where handlers read it with GetAuthSubject and the
// authz package checks roles against the Casbin policy.
//
// Two middlewares cover the API surface:
//
//   - RequireAuth: admin endpoints; missing or invalid tokens get 401
//   - OptionalAuth: public endpoints; a token, when presented, identifies
//     the shopper for personalized recommendations
//
// With AUTH_MODE=none (development only) RequireAuth admits every request
// as an anonymous administrator.
package auth
