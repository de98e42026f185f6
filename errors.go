package agentctx

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrMissingClient is returned when no Anthropic client is configured
	ErrMissingClient = errors.New("anthropic client is required")

	// ErrMissingModel is returned when no model is configured
	ErrMissingModel = errors.New("model is required")

	// ErrSessionNotFound is returned when a session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrMaxIterations is returned when the tool loop exceeds its budget
	ErrMaxIterations = errors.New("max tool iterations reached")

	// ErrInvalidToolSchema is returned when a tool schema is invalid
	ErrInvalidToolSchema = errors.New("invalid tool schema")
)

// AgentError represents an error with additional context
type AgentError struct {
	Op        string // Operation that failed
	SessionID string // Session ID if applicable
	Err       error  // Underlying error
}

// Error returns a formatted error message.
func (e *AgentError) Error() string {
	msg := fmt.Sprintf("agentctx %s failed", e.Op)
	if e.SessionID != "" {
		msg += fmt.Sprintf(" for session %s", e.SessionID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AgentError) Unwrap() error {
	return e.Err
}

// NewAgentError creates a new AgentError with the given operation and cause.
func NewAgentError(op string, err error) *AgentError {
	return &AgentError{Op: op, Err: err}
}

// NewAgentErrorWithSession creates an AgentError carrying a session ID.
func NewAgentErrorWithSession(op, sessionID string, err error) *AgentError {
	return &AgentError{Op: op, SessionID: sessionID, Err: err}
}
