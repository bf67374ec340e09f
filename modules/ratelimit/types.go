package ratelimit

import "time"

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerWindow is the maximum number of requests allowed in the window.
	RequestsPerWindow int
	// WindowSize is the duration of the sliding window.
	WindowSize time.Duration
	// KeyPrefix is prepended to every Redis key the limiter writes.
	KeyPrefix string
}

// DefaultConfig allows 100 requests per minute per client.
func DefaultConfig() Config {
	return Config{
		RequestsPerWindow: 100,
		WindowSize:        time.Minute,
		KeyPrefix:         "taskd:ratelimit:",
	}
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration // only set when not allowed
}
