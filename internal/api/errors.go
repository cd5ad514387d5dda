// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package api

import "errors"

// Common API errors
var (
	// ErrNotReady indicates no snapshot has been installed yet.
	ErrNotReady = errors.New("recommendation snapshot not loaded")

	// ErrPostersDisabled indicates no poster resolver is configured.
	ErrPostersDisabled = errors.New("poster lookups are disabled")
)
