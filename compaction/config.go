package compaction

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	// DefaultRecentWindowSize protects the last 3 user turns from compaction.
	DefaultRecentWindowSize = 3

	// DefaultTokenLimit is the context window assumed when the caller does
	// not supply one (Claude Sonnet class models).
	DefaultTokenLimit = 200000

	// DefaultCounterModel is the model used for the token counting API.
	DefaultCounterModel = "claude-3-5-haiku-20241022"

	// DefaultUseTokenCountingAPI enables API-backed token counts.
	DefaultUseTokenCountingAPI = true

	// DefaultCountCacheTTL is how long a cached token count stays fresh.
	DefaultCountCacheTTL = 5 * time.Minute
)

// Config holds the knobs shared by the pipeline caller and the token
// accountant.
type Config struct {
	// RecentWindowSize is the number of most recent user turns protected
	// from every pass. Values below 1 are treated as 1.
	// Default: 3
	RecentWindowSize int

	// TokenLimit is the model's context window, used as the denominator of
	// the token budget ratio.
	// Default: 200000
	TokenLimit int

	// CounterModel is the model name passed to the token counting API.
	// Default: "claude-3-5-haiku-20241022"
	CounterModel string

	// UseTokenCountingAPI selects API-backed counting with a character
	// approximation fallback. When false only the approximation is used.
	// Default: true
	UseTokenCountingAPI bool

	// CountCacheTTL bounds how long the token accountant trusts a cached
	// count for unchanged content.
	// Default: 5 minutes
	CountCacheTTL time.Duration
}

// DefaultConfig returns a Config with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		RecentWindowSize:    DefaultRecentWindowSize,
		TokenLimit:          DefaultTokenLimit,
		CounterModel:        DefaultCounterModel,
		UseTokenCountingAPI: DefaultUseTokenCountingAPI,
		CountCacheTTL:       DefaultCountCacheTTL,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.RecentWindowSize == 0 {
		c.RecentWindowSize = DefaultRecentWindowSize
	}
	if c.TokenLimit == 0 {
		c.TokenLimit = DefaultTokenLimit
	}
	if c.CounterModel == "" {
		c.CounterModel = DefaultCounterModel
	}
	if c.CountCacheTTL == 0 {
		c.CountCacheTTL = DefaultCountCacheTTL
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.RecentWindowSize < 0 {
		return fmt.Errorf("%w: recent_window_size must be non-negative, got %d",
			ErrInvalidConfig, c.RecentWindowSize)
	}
	if c.TokenLimit <= 0 {
		return fmt.Errorf("%w: token_limit must be positive, got %d",
			ErrInvalidConfig, c.TokenLimit)
	}
	if c.CounterModel == "" {
		return fmt.Errorf("%w: counter_model is required", ErrInvalidConfig)
	}
	if c.CountCacheTTL < 0 {
		return fmt.Errorf("%w: count_cache_ttl must be non-negative, got %s",
			ErrInvalidConfig, c.CountCacheTTL)
	}
	return nil
}
