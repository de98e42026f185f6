package prompt

import (
	"testing"

	"github.com/agentctx/agentctx/types"
)

func TestToMessageParams(t *testing.T) {
	t.Run("user message", func(t *testing.T) {
		params := ToMessageParams([]*types.Message{
			{ID: "m1", Role: types.RoleUser, Content: "hello"},
		})
		if len(params) != 1 {
			t.Fatalf("params = %d, want 1", len(params))
		}
		if params[0].Role != "user" {
			t.Errorf("role = %q, want user", params[0].Role)
		}
		if got := params[0].Content[0].OfText.Text; got != "hello" {
			t.Errorf("text = %q, want hello", got)
		}
	})

	t.Run("empty user message skipped", func(t *testing.T) {
		params := ToMessageParams([]*types.Message{
			{ID: "m1", Role: types.RoleUser, Content: ""},
		})
		if len(params) != 0 {
			t.Fatalf("params = %d, want 0", len(params))
		}
	})

	t.Run("assistant with finished tool call expands to two turns", func(t *testing.T) {
		msg := &types.Message{
			ID:      "m1",
			Role:    types.RoleAssistant,
			Content: "let me check",
			ToolCalls: []types.ToolCall{
				{ID: "call-1", Name: "search", Input: `{"q":"logs"}`},
			},
		}
		msg.ToolCalls[0].SetResult("found 3 files", false)

		params := ToMessageParams([]*types.Message{msg})
		if len(params) != 2 {
			t.Fatalf("params = %d, want 2", len(params))
		}
		if params[0].Role != "assistant" || params[1].Role != "user" {
			t.Errorf("roles = %q, %q, want assistant, user", params[0].Role, params[1].Role)
		}

		if got := params[0].Content[0].OfText.Text; got != "let me check" {
			t.Errorf("assistant text = %q", got)
		}
		tu := params[0].Content[1].OfToolUse
		if tu == nil || tu.ID != "call-1" || tu.Name != "search" {
			t.Errorf("tool_use block = %+v", params[0].Content[1])
		}

		tr := params[1].Content[0].OfToolResult
		if tr == nil || tr.ToolUseID != "call-1" {
			t.Fatalf("tool_result block = %+v", params[1].Content[0])
		}
		if got := tr.Content[0].OfText.Text; got != "found 3 files" {
			t.Errorf("result text = %q", got)
		}
	})

	t.Run("error result keeps the error flag", func(t *testing.T) {
		msg := &types.Message{
			ID:        "m1",
			Role:      types.RoleAssistant,
			ToolCalls: []types.ToolCall{{ID: "call-1", Name: "bash", Input: "{}"}},
		}
		msg.ToolCalls[0].SetResult("exit status 1", true)

		params := ToMessageParams([]*types.Message{msg})
		if len(params) != 2 {
			t.Fatalf("params = %d, want 2", len(params))
		}
		tr := params[1].Content[0].OfToolResult
		if !tr.IsError.Or(false) {
			t.Error("error flag lost in conversion")
		}
	})

	t.Run("unfinished call produces no result turn", func(t *testing.T) {
		msg := &types.Message{
			ID:        "m1",
			Role:      types.RoleAssistant,
			Content:   "checking",
			ToolCalls: []types.ToolCall{{ID: "call-1", Name: "search", Input: "{}"}},
		}

		params := ToMessageParams([]*types.Message{msg})
		if len(params) != 1 {
			t.Fatalf("params = %d, want 1", len(params))
		}
	})

	t.Run("empty assistant message skipped", func(t *testing.T) {
		params := ToMessageParams([]*types.Message{
			{ID: "m1", Role: types.RoleAssistant, Content: ""},
		})
		if len(params) != 0 {
			t.Fatalf("params = %d, want 0", len(params))
		}
	})
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string // fmt-style sanity check on type
	}{
		{"valid object", `{"q":"x"}`, "map"},
		{"empty string", "", "map"},
		{"malformed", `{"q":`, "map"},
		{"array", `[1,2]`, "slice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseInput(tt.raw)
			switch got.(type) {
			case map[string]any:
				if tt.want != "map" {
					t.Errorf("parseInput(%q) = map, want %s", tt.raw, tt.want)
				}
			case []any:
				if tt.want != "slice" {
					t.Errorf("parseInput(%q) = slice, want %s", tt.raw, tt.want)
				}
			default:
				t.Errorf("parseInput(%q) = %T", tt.raw, got)
			}
		})
	}
}
