// Package channels defines the adapter surface for external messaging
// channels that front the query pipeline.
package channels

import (
	"context"
	"time"
)

// Adapter defines the interface for all channel implementations
type Adapter interface {
	// Name returns the human-readable name for this adapter
	Name() string

	// Type returns the adapter type (e.g., "telegram")
	Type() string

	// Start initializes and starts the adapter
	Start(ctx context.Context) error

	// Stop gracefully shuts down the adapter
	Stop() error

	// Status returns the current adapter status
	Status() Status

	// IsHealthy returns whether the adapter is functioning properly
	IsHealthy() bool
}

// Status represents the current status of a channel adapter
type Status struct {
	Status    StatusCode `json:"status"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}

// StatusCode represents the various states an adapter can be in
type StatusCode string

const (
	StatusInitializing StatusCode = "initializing"
	StatusOnline       StatusCode = "online"
	StatusOffline      StatusCode = "offline"
	StatusError        StatusCode = "error"
)
