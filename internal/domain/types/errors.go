package types

import "errors"

// Errors shared by the service and the HTTP API.
var (
	ErrNotStarted = errors.New("service not started")
	ErrQueueFull  = errors.New("campaign queue full")
	ErrNoReport   = errors.New("no report generated yet")
)
