// internal/services/errors.go
package services

import (
	"errors"

	"github.com/hargapangan/pangan-backend/internal/panelharga"
)

// Error kinds surfaced to handlers. Handlers map these onto HTTP statuses;
// everything else is treated as an internal error.
var (
	// ErrUpstreamUnavailable aborts a sync cycle; stored data is retained.
	ErrUpstreamUnavailable = panelharga.ErrUpstreamUnavailable

	// Override creation preconditions.
	ErrCommodityNotFound = errors.New("commodity not found")
	ErrNoCurrentPrice    = errors.New("no current price to override")

	// Override state machine violations.
	ErrAlreadyProcessed = errors.New("override has already been processed")
	ErrInvalidDecision  = errors.New("decision must be approve or reject")

	// Per-row input failures; batches accumulate these and continue.
	ErrValidationFailed = errors.New("validation failed")

	// Manual trigger while a scheduled cycle holds the guard.
	ErrSyncAlreadyRunning = errors.New("sync cycle already running")
)
