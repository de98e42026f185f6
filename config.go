package agentctx

import (
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/agentctx/agentctx/compaction"
	"github.com/agentctx/agentctx/tool"
)

// Default configuration values.
const (
	// DefaultMaxTokens is the default generation budget per model call.
	DefaultMaxTokens = 4096

	// DefaultMaxToolIterations bounds the tool-calling loop within one turn.
	DefaultMaxToolIterations = 10

	// DefaultKeepRecentResults is how many of the newest tool result blocks
	// the ephemeral buffer truncation keeps whole between tool rounds.
	DefaultKeepRecentResults = 3

	// DefaultToolTimeout bounds a single tool execution.
	DefaultToolTimeout = 30 * time.Second
)

// Config holds the required agent configuration.
type Config struct {
	// Client is the Anthropic API client.
	Client *anthropic.Client

	// Model is the model used for conversation turns.
	Model string

	// SystemPrompt is prepended to every model call. Optional.
	SystemPrompt string
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Client == nil {
		return NewAgentError("Validate", ErrMissingClient)
	}
	if c.Model == "" {
		return NewAgentError("Validate", ErrMissingModel)
	}
	return nil
}

// CompactionHook is called after a pipeline run that rewrote something.
type CompactionHook func(sessionID string, report compaction.Report)

// internalConfig is the resolved configuration after options are applied.
type internalConfig struct {
	client       *anthropic.Client
	model        string
	systemPrompt string

	maxTokens         int64
	temperature       *float64
	maxToolIterations int
	toolTimeout       time.Duration
	tools             []tool.Tool

	autoCompaction    bool
	compaction        *compaction.Config
	extraPasses       []compaction.Pass
	keepRecentResults int

	logger          compaction.Logger
	compactionHooks []CompactionHook
}

func newInternalConfig(cfg Config) *internalConfig {
	return &internalConfig{
		client:            cfg.Client,
		model:             cfg.Model,
		systemPrompt:      cfg.SystemPrompt,
		maxTokens:         DefaultMaxTokens,
		maxToolIterations: DefaultMaxToolIterations,
		toolTimeout:       DefaultToolTimeout,
		autoCompaction:    true,
		compaction:        compaction.DefaultConfig(),
		keepRecentResults: DefaultKeepRecentResults,
	}
}
