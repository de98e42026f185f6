package compaction

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/agentctx/agentctx/types"
)

// TokenCounter is the token accountant supplying Context.TokenUsage. It
// prefers the Claude token counting API and falls back to the character
// approximation when the API is disabled, absent, or failing.
//
// Counts are cached by content hash with a TTL; a stale entry is refreshed
// lazily on the next read. The cache is the counter's own, never ambient
// state, so independent conversations can share one counter safely.
type TokenCounter struct {
	client *anthropic.Client
	model  string
	useAPI bool
	ttl    time.Duration

	mu       sync.Mutex
	cache    map[string]cachedCount
	fallback bool // set once the API has failed; stops retrying every call
}

type cachedCount struct {
	tokens int
	expiry time.Time
}

// NewTokenCounter creates a TokenCounter. A nil client forces the
// approximation path regardless of useAPI.
func NewTokenCounter(client *anthropic.Client, model string, useAPI bool, ttl time.Duration) *TokenCounter {
	if model == "" {
		model = DefaultCounterModel
	}
	if ttl <= 0 {
		ttl = DefaultCountCacheTTL
	}
	return &TokenCounter{
		client: client,
		model:  model,
		useAPI: useAPI,
		ttl:    ttl,
		cache:  make(map[string]cachedCount),
	}
}

// Count returns the token count for the conversation. It never fails: API
// errors flip the counter into approximation mode for the rest of its life.
func (tc *TokenCounter) Count(ctx context.Context, messages []*types.Message) int {
	if len(messages) == 0 {
		return 0
	}

	key := tc.cacheKey(messages)

	tc.mu.Lock()
	if cached, ok := tc.cache[key]; ok && time.Now().Before(cached.expiry) {
		tc.mu.Unlock()
		return cached.tokens
	}
	tc.mu.Unlock()

	tokens, usedAPI := tc.count(ctx, messages)

	tc.mu.Lock()
	tc.cache[key] = cachedCount{tokens: tokens, expiry: time.Now().Add(tc.ttl)}
	if !usedAPI && tc.useAPI {
		tc.fallback = true
	}
	tc.mu.Unlock()

	return tokens
}

func (tc *TokenCounter) count(ctx context.Context, messages []*types.Message) (tokens int, usedAPI bool) {
	tc.mu.Lock()
	useAPI := tc.useAPI && tc.client != nil && !tc.fallback
	tc.mu.Unlock()

	if useAPI {
		if n, err := tc.countWithAPI(ctx, messages); err == nil {
			return n, true
		}
	}
	return EstimateConversationTokens(messages), false
}

// countWithAPI uses the Claude token counting API.
func (tc *TokenCounter) countWithAPI(ctx context.Context, messages []*types.Message) (int, error) {
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		params = append(params, tc.convertMessage(msg)...)
	}
	if len(params) == 0 {
		return 0, nil
	}

	result, err := tc.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
		Model:    anthropic.Model(tc.model),
		Messages: params,
	})
	if err != nil {
		return 0, fmt.Errorf("token counting failed: %w", err)
	}

	return int(result.InputTokens), nil
}

// convertMessage builds the Anthropic wire form of one stored message for
// counting purposes. An assistant message with finished tool calls expands
// to the assistant turn plus the user turn carrying the tool results, which
// is how the provider sees them.
func (tc *TokenCounter) convertMessage(msg *types.Message) []anthropic.MessageParam {
	if msg.Role == types.RoleUser {
		if msg.Content == "" {
			return nil
		}
		return []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
		}
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
	if msg.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
	}

	var results []anthropic.ContentBlockParamUnion
	for i := range msg.ToolCalls {
		call := &msg.ToolCalls[i]
		blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, toolInput(call.Input), call.Name))
		if call.HasResult() {
			results = append(results, anthropic.NewToolResultBlock(call.ID, call.ResultText(), call.IsError))
		}
	}
	if len(blocks) == 0 {
		return nil
	}

	out := []anthropic.MessageParam{anthropic.NewAssistantMessage(blocks...)}
	if len(results) > 0 {
		out = append(out, anthropic.NewUserMessage(results...))
	}
	return out
}

// toolInput parses the stored JSON input of a tool call, falling back to an
// empty object on malformed input.
func toolInput(raw string) any {
	if raw == "" {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return map[string]any{}
	}
	return v
}

// cacheKey hashes the compaction-relevant content of the conversation.
func (tc *TokenCounter) cacheKey(messages []*types.Message) string {
	h := sha256.New()
	for _, msg := range messages {
		fmt.Fprintf(h, "%s|%s|%s|", msg.ID, msg.Role, msg.Content)
		for i := range msg.ToolCalls {
			c := &msg.ToolCalls[i]
			fmt.Fprintf(h, "%s|%s|%d|%t|", c.ID, c.Name, len(c.ResultText()), c.IsError)
		}
	}
	return fmt.Sprintf("%s:%x", tc.model, h.Sum(nil)[:8])
}
