package agentctx

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/agentctx/agentctx/compaction"
	"github.com/agentctx/agentctx/tool"
	"github.com/agentctx/agentctx/types"
)

func testConfig() Config {
	client := anthropic.NewClient()
	return Config{
		Client: &client,
		Model:  "claude-sonnet-4-5-20250929",
	}
}

func TestNewValidatesConfig(t *testing.T) {
	t.Run("missing client", func(t *testing.T) {
		_, err := New(Config{Model: "claude-sonnet-4-5-20250929"})
		if !errors.Is(err, ErrMissingClient) {
			t.Errorf("New() error = %v, want ErrMissingClient", err)
		}
	})

	t.Run("missing model", func(t *testing.T) {
		client := anthropic.NewClient()
		_, err := New(Config{Client: &client})
		if !errors.Is(err, ErrMissingModel) {
			t.Errorf("New() error = %v, want ErrMissingModel", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		agent, err := New(testConfig())
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		if agent.Model() != "claude-sonnet-4-5-20250929" {
			t.Errorf("Model() = %q", agent.Model())
		}
	})
}

func TestNewRegistersBuiltinPruner(t *testing.T) {
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	passes := agent.Pipeline().Passes()
	if len(passes) != 1 || passes[0] != compaction.PrunerName {
		t.Errorf("Passes() = %v, want [%s]", passes, compaction.PrunerName)
	}
}

func TestNewAppliesOptions(t *testing.T) {
	agent, err := New(testConfig(),
		WithMaxTokens(1024),
		WithTemperature(0.2),
		WithMaxToolIterations(5),
		WithToolTimeout(time.Minute),
		WithRecentWindowSize(7),
		WithKeepRecentResults(1),
		OnCompaction(func(sessionID string, report compaction.Report) {}),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	cfg := agent.config
	if cfg.maxTokens != 1024 {
		t.Errorf("maxTokens = %d, want 1024", cfg.maxTokens)
	}
	if cfg.temperature == nil || *cfg.temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", cfg.temperature)
	}
	if cfg.maxToolIterations != 5 {
		t.Errorf("maxToolIterations = %d, want 5", cfg.maxToolIterations)
	}
	if cfg.toolTimeout != time.Minute {
		t.Errorf("toolTimeout = %s, want 1m", cfg.toolTimeout)
	}
	if cfg.compaction.RecentWindowSize != 7 {
		t.Errorf("RecentWindowSize = %d, want 7", cfg.compaction.RecentWindowSize)
	}
	if cfg.keepRecentResults != 1 {
		t.Errorf("keepRecentResults = %d, want 1", cfg.keepRecentResults)
	}
	if len(cfg.compactionHooks) != 1 {
		t.Errorf("compactionHooks = %d, want 1", len(cfg.compactionHooks))
	}
}

func TestNewRejectsInvalidToolSchema(t *testing.T) {
	bad := tool.NewFuncTool("bad", "wrong schema",
		tool.Schema{Type: "string"},
		func(ctx context.Context, input json.RawMessage) (string, error) { return "", nil },
	)

	_, err := New(testConfig(), WithTools(bad))
	if !errors.Is(err, ErrInvalidToolSchema) {
		t.Errorf("New() error = %v, want ErrInvalidToolSchema", err)
	}
}

func TestNewRejectsInvalidCompactionConfig(t *testing.T) {
	_, err := New(testConfig(), WithCompactionConfig(&compaction.Config{TokenLimit: -1}))
	if !errors.Is(err, compaction.ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	id := agent.NewSession()
	if id == "" {
		t.Fatal("NewSession() returned an empty ID")
	}

	history, err := agent.History(id)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("new session history = %d messages, want 0", len(history))
	}

	_, err = agent.History("no-such-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("History(unknown) error = %v, want ErrSessionNotFound", err)
	}

	var agentErr *AgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("History(unknown) error type = %T, want *AgentError", err)
	}
	if agentErr.SessionID != "no-such-session" {
		t.Errorf("SessionID = %q", agentErr.SessionID)
	}
}

func TestRegisterToolAfterConstruction(t *testing.T) {
	agent, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	echo := tool.NewFuncTool("echo", "echoes",
		tool.Schema{Type: "object", Properties: map[string]tool.PropertyDef{}},
		func(ctx context.Context, input json.RawMessage) (string, error) { return "ok", nil },
	)
	if err := agent.RegisterTool(echo); err != nil {
		t.Fatalf("RegisterTool() failed: %v", err)
	}

	tools := agent.Tools()
	if len(tools) != 1 || tools[0] != "echo" {
		t.Errorf("Tools() = %v, want [echo]", tools)
	}
}

func TestExecuteToolCalls(t *testing.T) {
	var seenSession string
	echo := tool.NewFuncTool("echo", "echoes",
		tool.Schema{
			Type: "object",
			Properties: map[string]tool.PropertyDef{
				"text": {Type: "string"},
			},
		},
		func(ctx context.Context, input json.RawMessage) (string, error) {
			seenSession, _ = tool.SessionIDFromContext(ctx)
			var args struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(input, &args); err != nil {
				return "", err
			}
			return args.Text, nil
		},
	)

	agent, err := New(testConfig(), WithTools(echo))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	msg := types.NewAssistantMessage("sess-1", "on it", []types.ToolCall{
		{ID: "c1", Name: "echo", Input: `{"text":"hello"}`},
		{ID: "c2", Name: "missing", Input: `{}`},
	})

	agent.executeToolCalls(context.Background(), msg)

	if !msg.ToolCalls[0].HasResult() {
		t.Fatal("first call has no result")
	}
	if msg.ToolCalls[0].ResultText() != "hello" || msg.ToolCalls[0].IsError {
		t.Errorf("first result = %q (error=%t)", msg.ToolCalls[0].ResultText(), msg.ToolCalls[0].IsError)
	}
	if !msg.ToolCalls[1].HasResult() || !msg.ToolCalls[1].IsError {
		t.Error("missing tool did not produce an error result")
	}
	if seenSession != "sess-1" {
		t.Errorf("tool saw session %q, want sess-1", seenSession)
	}
}

func TestAssemblePromptCompactsAndFiresHooks(t *testing.T) {
	var hookReports []compaction.Report
	agent, err := New(testConfig(),
		WithRecentWindowSize(1),
		OnCompaction(func(sessionID string, report compaction.Report) {
			hookReports = append(hookReports, report)
		}),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	id := agent.NewSession()
	sess, err := agent.session(id)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}

	assistant := types.NewAssistantMessage(id, "checking", []types.ToolCall{
		{ID: "c1", Name: "search", Input: `{}`},
	})
	assistant.ToolCalls[0].SetResult(bigResult(2000), false)

	sess.append(types.NewUserMessage(id, "search the docs"))
	sess.append(assistant)
	sess.append(types.NewUserMessage(id, "summarize"))

	// Past the pruner threshold: 120k of 200k.
	sess.setLastUsage(120000)

	turn := &Response{SessionID: id}
	buffer := agent.assemblePrompt(context.Background(), sess, sess.snapshot(), turn)

	if len(turn.Compaction.Entries) != 1 {
		t.Fatalf("compaction entries = %d, want 1", len(turn.Compaction.Entries))
	}
	if len(hookReports) != 1 {
		t.Fatalf("hook calls = %d, want 1", len(hookReports))
	}
	if len(buffer) == 0 {
		t.Fatal("assemblePrompt returned an empty buffer")
	}

	// The stored history still holds the full result.
	history, err := agent.History(id)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if got := history[1].ToolCalls[0].ResultText(); len(got) != 2000 {
		t.Errorf("stored result length = %d, want 2000 (compaction must not write back)", len(got))
	}
}

func TestAssemblePromptBelowThresholdIsUntouched(t *testing.T) {
	agent, err := New(testConfig(), WithRecentWindowSize(1))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	id := agent.NewSession()
	sess, _ := agent.session(id)

	assistant := types.NewAssistantMessage(id, "checking", []types.ToolCall{
		{ID: "c1", Name: "search", Input: `{}`},
	})
	assistant.ToolCalls[0].SetResult(bigResult(2000), false)

	sess.append(types.NewUserMessage(id, "search"))
	sess.append(assistant)
	sess.append(types.NewUserMessage(id, "more"))
	sess.setLastUsage(80000) // ratio 0.4, below the pruner threshold

	turn := &Response{SessionID: id}
	agent.assemblePrompt(context.Background(), sess, sess.snapshot(), turn)

	if len(turn.Compaction.Entries) != 0 {
		t.Errorf("compaction entries = %d, want 0", len(turn.Compaction.Entries))
	}
}

func TestAssemblePromptDisabledCompaction(t *testing.T) {
	agent, err := New(testConfig(), WithAutoCompaction(false), WithRecentWindowSize(1))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	id := agent.NewSession()
	sess, _ := agent.session(id)

	assistant := types.NewAssistantMessage(id, "checking", []types.ToolCall{
		{ID: "c1", Name: "search", Input: `{}`},
	})
	assistant.ToolCalls[0].SetResult(bigResult(2000), false)

	sess.append(types.NewUserMessage(id, "search"))
	sess.append(assistant)
	sess.append(types.NewUserMessage(id, "more"))
	sess.setLastUsage(190000)

	turn := &Response{SessionID: id}
	agent.assemblePrompt(context.Background(), sess, sess.snapshot(), turn)

	if len(turn.Compaction.Entries) != 0 {
		t.Errorf("compaction ran despite WithAutoCompaction(false): %+v", turn.Compaction)
	}
}

func bigResult(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
