// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

//go:build integration

// Package testinfra starts Docker containers for integration tests using
// testcontainers-go. It is compiled only with the integration build tag.
//
//	func TestAgainstNATS(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    nc, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.CleanupContainer(t, nc)
//	    // connect to nc.URL
//	}
package testinfra
