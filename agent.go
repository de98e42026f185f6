package agentctx

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/agentctx/agentctx/compaction"
	"github.com/agentctx/agentctx/prompt"
	"github.com/agentctx/agentctx/tool"
	"github.com/agentctx/agentctx/types"
)

// Agent is the conversational turn handler. It holds per-session message
// histories, runs the multi-round tool-calling loop, and keeps each
// conversation within the model's token budget: the compaction pipeline
// degrades the prompt before every model call, and the ephemeral buffer
// truncation trims aged tool results between tool rounds.
type Agent struct {
	config   *internalConfig
	pipeline *compaction.Pipeline
	counter  *compaction.TokenCounter
	registry *tool.Registry
	executor *tool.Executor

	mu       sync.RWMutex
	sessions map[string]*session
}

// Response represents the outcome of one agent turn.
type Response struct {
	SessionID    string
	Text         string
	StopReason   string
	InputTokens  int
	OutputTokens int

	// Rounds is how many model calls the turn took.
	Rounds int

	// Compaction merges the reports of every pipeline run in this turn.
	Compaction compaction.Report
}

// New creates a new Agent with the given configuration and options.
func New(cfg Config, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	internal := newInternalConfig(cfg)
	for _, opt := range opts {
		if err := opt(internal); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if err := internal.compaction.Validate(); err != nil {
		return nil, err
	}

	registry := tool.NewRegistry()
	if err := registry.RegisterAll(internal.tools); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	executor := tool.NewExecutor(registry)
	executor.SetDefaultTimeout(internal.toolTimeout)

	pipeline := compaction.NewPipeline(internal.logger)
	if err := pipeline.Register(compaction.NewToolResponsePruner()); err != nil {
		return nil, err
	}
	for _, pass := range internal.extraPasses {
		if err := pipeline.Register(pass); err != nil {
			return nil, err
		}
	}

	counter := compaction.NewTokenCounter(
		internal.client,
		internal.compaction.CounterModel,
		internal.compaction.UseTokenCountingAPI,
		internal.compaction.CountCacheTTL,
	)

	return &Agent{
		config:   internal,
		pipeline: pipeline,
		counter:  counter,
		registry: registry,
		executor: executor,
		sessions: make(map[string]*session),
	}, nil
}

// Model returns the model being used by this agent.
func (a *Agent) Model() string {
	return a.config.model
}

// Pipeline exposes the compaction pipeline, e.g. to register passes after
// construction.
func (a *Agent) Pipeline() *compaction.Pipeline {
	return a.pipeline
}

// Tools returns the names of the registered tools.
func (a *Agent) Tools() []string {
	return a.registry.List()
}

// RegisterTool adds a tool after construction.
func (a *Agent) RegisterTool(t tool.Tool) error {
	return a.registry.Register(t)
}

// Run executes one agent turn: it appends the user message, then alternates
// model calls and tool executions until the model stops asking for tools.
func (a *Agent) Run(ctx context.Context, sessionID, input string) (*Response, error) {
	sess, err := a.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.append(types.NewUserMessage(sessionID, input))

	turn := &Response{SessionID: sessionID}

	for round := 1; round <= a.config.maxToolIterations; round++ {
		history := sess.snapshot()
		buffer := a.assemblePrompt(ctx, sess, history, turn)

		// Between tool rounds the working buffer is trimmed with the
		// cheap recency-only rule; the stored history is untouched.
		if round > 1 {
			stats := prompt.TruncateOldToolResults(buffer, a.config.keepRecentResults)
			if stats.Truncated > 0 && a.config.logger != nil {
				a.config.logger.Debug("trimmed prompt buffer",
					"session_id", sessionID,
					"truncated", stats.Truncated,
					"tokens_saved", stats.TokensSaved,
				)
			}
		}

		resp, err := a.createMessage(ctx, buffer)
		if err != nil {
			return nil, NewAgentErrorWithSession("Run", sessionID, err)
		}

		sess.setLastUsage(int(resp.Usage.InputTokens + resp.Usage.OutputTokens))
		turn.Rounds = round
		turn.InputTokens += int(resp.Usage.InputTokens)
		turn.OutputTokens += int(resp.Usage.OutputTokens)
		turn.StopReason = string(resp.StopReason)

		text, calls := prompt.ParseAssistant(resp)
		assistant := types.NewAssistantMessage(sessionID, text, calls)
		sess.append(assistant)
		turn.Text = text

		if len(calls) == 0 || resp.StopReason != anthropic.StopReasonToolUse {
			return turn, nil
		}

		a.executeToolCalls(ctx, assistant)
	}

	return nil, NewAgentErrorWithSession("Run", sessionID, ErrMaxIterations)
}

// assemblePrompt runs the compaction pipeline over the stored history and
// flattens the result into the provider buffer. The pipeline output is used
// only here; it is never written back to the session.
func (a *Agent) assemblePrompt(ctx context.Context, sess *session, history []*types.Message, turn *Response) []anthropic.MessageParam {
	if !a.config.autoCompaction {
		return prompt.ToMessageParams(history)
	}

	usage := sess.usage()
	if usage == 0 {
		usage = a.counter.Count(ctx, history)
	}

	result := a.pipeline.Run(history, compaction.Context{
		TokenUsage:       usage,
		TokenLimit:       a.config.compaction.TokenLimit,
		RecentWindowSize: a.config.compaction.RecentWindowSize,
	})

	if len(result.Report.Entries) > 0 {
		turn.Compaction.PassesRun = append(turn.Compaction.PassesRun, result.Report.PassesRun...)
		turn.Compaction.Entries = append(turn.Compaction.Entries, result.Report.Entries...)
		turn.Compaction.EstimatedTokensSaved += result.Report.EstimatedTokensSaved
		for _, hook := range a.config.compactionHooks {
			hook(sess.id, result.Report)
		}
	}

	return prompt.ToMessageParams(result.Messages)
}

// createMessage issues one Messages API call.
func (a *Agent) createMessage(ctx context.Context, buffer []anthropic.MessageParam) (*anthropic.Message, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.config.model),
		MaxTokens: a.config.maxTokens,
		Messages:  buffer,
	}

	if a.config.systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Type: "text", Text: a.config.systemPrompt},
		}
	}
	if a.registry.Count() > 0 {
		params.Tools = a.registry.ToAnthropicToolUnions()
	}
	if a.config.temperature != nil {
		params.Temperature = anthropic.Float(*a.config.temperature)
	}

	return a.config.client.Messages.New(ctx, params)
}

// executeToolCalls runs every tool call of the assistant message and
// records the results on the stored message. This is the only place
// business logic writes a tool result; afterwards only compaction may
// rewrite it.
func (a *Agent) executeToolCalls(ctx context.Context, msg *types.Message) {
	if len(msg.ToolCalls) == 0 {
		return
	}

	ctx = tool.WithSessionID(ctx, msg.SessionID)

	requests := make([]tool.Request, len(msg.ToolCalls))
	for i := range msg.ToolCalls {
		call := &msg.ToolCalls[i]
		requests[i] = tool.Request{
			ID:    call.ID,
			Name:  call.Name,
			Input: json.RawMessage(call.Input),
		}
	}

	results := a.executor.ExecuteAll(ctx, requests)
	for i, result := range results {
		if result.Error != nil {
			msg.ToolCalls[i].SetResult(result.Error.Error(), true)
		} else {
			msg.ToolCalls[i].SetResult(result.Output, false)
		}
	}
}
