// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package authz authorizes authenticated callers with Casbin RBAC.
//
// The embedded model (model.conf) and policy (policy.csv) define three
// roles with inheritance:
//
//	viewer    read recommendations and status
//	operator  viewer, plus knowledge:refresh
//	admin     everything, including knowledge:rebuild
//
// CASBIN_MODEL_PATH and CASBIN_POLICY_PATH replace the embedded files.
// Decisions are cached per role, object and action until Reload.
//
// Usage with chi:
//
//	r.With(authMW.RequireAuth, authzMW.Authorize(authz.ObjectKnowledge, authz.ActionRebuild)).
//	    Post("/admin/rebuild", h.Rebuild)
package authz
