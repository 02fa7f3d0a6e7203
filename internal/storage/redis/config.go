package redis

import (
	"github.com/mcoot/edugames/internal/storage"
)

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Retry bounds the WATCH/MULTI retry loop used by UpdateUser
	Retry storage.RetryConfig
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		Retry:        storage.DefaultRetryConfig(),
	}
}
