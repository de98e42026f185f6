package agentctx

import (
	"time"

	"github.com/agentctx/agentctx/compaction"
	"github.com/agentctx/agentctx/tool"
)

// Option is a functional option for configuring an Agent
type Option func(*internalConfig) error

// WithMaxTokens sets the maximum number of tokens to generate
func WithMaxTokens(n int64) Option {
	return func(c *internalConfig) error {
		c.maxTokens = n
		return nil
	}
}

// WithTemperature sets the temperature for sampling (0.0 to 1.0)
func WithTemperature(t float64) Option {
	return func(c *internalConfig) error {
		c.temperature = &t
		return nil
	}
}

// WithTools registers tools with the agent
func WithTools(tools ...tool.Tool) Option {
	return func(c *internalConfig) error {
		for _, t := range tools {
			if t.InputSchema().Type != "object" {
				return NewAgentError("WithTools", ErrInvalidToolSchema)
			}
			c.tools = append(c.tools, t)
		}
		return nil
	}
}

// WithMaxToolIterations bounds the tool-calling loop within one turn
func WithMaxToolIterations(n int) Option {
	return func(c *internalConfig) error {
		if n > 0 {
			c.maxToolIterations = n
		}
		return nil
	}
}

// WithToolTimeout bounds a single tool execution
func WithToolTimeout(d time.Duration) Option {
	return func(c *internalConfig) error {
		c.toolTimeout = d
		return nil
	}
}

// WithAutoCompaction enables or disables automatic context compaction
func WithAutoCompaction(enabled bool) Option {
	return func(c *internalConfig) error {
		c.autoCompaction = enabled
		return nil
	}
}

// WithCompactionConfig overrides the compaction configuration
func WithCompactionConfig(cfg *compaction.Config) Option {
	return func(c *internalConfig) error {
		if cfg == nil {
			return nil
		}
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.compaction = cfg
		return nil
	}
}

// WithRecentWindowSize sets how many recent user turns compaction protects
func WithRecentWindowSize(n int) Option {
	return func(c *internalConfig) error {
		c.compaction.RecentWindowSize = n
		return nil
	}
}

// WithPass registers an additional compaction pass alongside the built-in
// tool-response pruner
func WithPass(pass compaction.Pass) Option {
	return func(c *internalConfig) error {
		c.extraPasses = append(c.extraPasses, pass)
		return nil
	}
}

// WithKeepRecentResults sets how many of the newest tool result blocks the
// between-round buffer truncation keeps whole
func WithKeepRecentResults(n int) Option {
	return func(c *internalConfig) error {
		c.keepRecentResults = n
		return nil
	}
}

// WithLogger sets the diagnostic logger. A nil logger disables diagnostics.
func WithLogger(logger compaction.Logger) Option {
	return func(c *internalConfig) error {
		c.logger = logger
		return nil
	}
}

// OnCompaction registers a hook called after every pipeline run that
// rewrote at least one tool result
func OnCompaction(hook CompactionHook) Option {
	return func(c *internalConfig) error {
		c.compactionHooks = append(c.compactionHooks, hook)
		return nil
	}
}
