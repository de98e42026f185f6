// Package types defines the wire-level conversation model shared by the agent
// turn handler and the compaction core.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the message role
type Role string

const (
	// RoleUser represents a user message
	RoleUser Role = "user"

	// RoleAssistant represents an assistant message
	RoleAssistant Role = "assistant"
)

// Message represents one conversation turn. The order of messages within a
// conversation is significant and is never changed by compaction; compaction
// may only rewrite the Result text of individual tool calls.
type Message struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToolCall records one tool invocation made by the assistant together with
// its outcome. Result is nil until the tool finishes; once set, only the
// compaction core may rewrite it.
type ToolCall struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Input   string  `json:"input,omitempty"`
	Result  *string `json:"result,omitempty"`
	IsError bool    `json:"is_error,omitempty"`
}

// HasResult reports whether the tool call has completed and carries a result.
func (tc *ToolCall) HasResult() bool {
	return tc.Result != nil
}

// ResultText returns the result text, or "" if the tool has not finished.
func (tc *ToolCall) ResultText() string {
	if tc.Result == nil {
		return ""
	}
	return *tc.Result
}

// SetResult records the tool outcome.
func (tc *ToolCall) SetResult(text string, isError bool) {
	tc.Result = &text
	tc.IsError = isError
}

// NewMessage creates a new message for the given session.
func NewMessage(sessionID string, role Role, content string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a new user message with text content
func NewUserMessage(sessionID string, text string) *Message {
	return NewMessage(sessionID, RoleUser, text)
}

// NewAssistantMessage creates a new assistant message
func NewAssistantMessage(sessionID string, text string, toolCalls []ToolCall) *Message {
	msg := NewMessage(sessionID, RoleAssistant, text)
	msg.ToolCalls = toolCalls
	return msg
}

// Clone returns a copy of the message with its own tool-call slice. The
// compaction core uses this before rewriting any tool result so that callers
// holding the original never observe a mutation.
func (m *Message) Clone() *Message {
	msgCopy := *m
	if m.ToolCalls != nil {
		msgCopy.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(msgCopy.ToolCalls, m.ToolCalls)
	}
	return &msgCopy
}
