// Package prompt builds and trims the provider-level message buffer sent to
// the Anthropic API. This buffer is a per-turn scratch structure, rebuilt
// from the stored conversation before every model call and never persisted.
package prompt

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/agentctx/agentctx/types"
)

// ToMessageParams flattens stored messages into the Anthropic wire form.
// An assistant message with finished tool calls expands into two provider
// messages: the assistant turn with its tool_use blocks, then a user turn
// carrying the tool_result blocks.
func ToMessageParams(messages []*types.Message) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case types.RoleUser:
			if msg.Content == "" {
				continue
			}
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))

		case types.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}

			var results []anthropic.ContentBlockParamUnion
			for i := range msg.ToolCalls {
				call := &msg.ToolCalls[i]
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, parseInput(call.Input), call.Name))
				if call.HasResult() {
					results = append(results, anthropic.NewToolResultBlock(call.ID, call.ResultText(), call.IsError))
				}
			}

			if len(blocks) == 0 {
				continue
			}
			params = append(params, anthropic.NewAssistantMessage(blocks...))
			if len(results) > 0 {
				params = append(params, anthropic.NewUserMessage(results...))
			}
		}
	}

	return params
}

// ParseAssistant extracts the text and tool calls from a model response.
// Tool calls come back without results; the tool execution layer fills
// those in.
func ParseAssistant(msg *anthropic.Message) (text string, calls []types.ToolCall) {
	for _, block := range msg.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			text += block.Text
		case anthropic.ToolUseBlock:
			calls = append(calls, types.ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: string(block.Input),
			})
		}
	}
	return text, calls
}

// parseInput parses the stored JSON input of a tool call, falling back to
// an empty object on malformed input.
func parseInput(raw string) any {
	if raw == "" {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return map[string]any{}
	}
	return v
}
