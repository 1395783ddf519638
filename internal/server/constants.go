// Package server provides the kiosk's HTTP and WebSocket handlers
package server

import "time"

// Server configuration constants
const (
	// Per-connection websocket action limit (sliding window)
	RateLimitMessages = 10
	RateLimitWindow   = time.Second

	// Deadline for a single websocket write
	WriteTimeout = 5 * time.Second

	// Outgoing messages buffered per connection before new ones are dropped
	SendQueueSize = 64

	// Largest request body accepted by the action endpoints
	MaxBodyBytes = 64 * 1024
)
