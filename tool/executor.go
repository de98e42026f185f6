package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Executor handles tool execution with input validation, error handling and
// timeouts
type Executor struct {
	registry       *Registry
	validator      *Validator
	defaultTimeout time.Duration
}

// NewExecutor creates a new tool executor
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry:       registry,
		validator:      NewValidator(),
		defaultTimeout: 30 * time.Second,
	}
}

// SetDefaultTimeout sets the default execution timeout
func (e *Executor) SetDefaultTimeout(timeout time.Duration) {
	if timeout > 0 {
		e.defaultTimeout = timeout
	}
}

// Request represents a request to execute a tool
type Request struct {
	ID    string          // Unique ID for this call
	Name  string          // Name of the tool to execute
	Input json.RawMessage // Input parameters
}

// Result represents the result of a tool execution
type Result struct {
	ID       string
	Name     string
	Output   string
	Error    error
	Duration time.Duration
}

// Execute executes a single tool call. The input is validated against the
// tool's schema first; a violation never reaches the tool.
func (e *Executor) Execute(ctx context.Context, req Request) Result {
	start := time.Now()

	if err := e.ValidateInput(req.Name, req.Input); err != nil {
		return Result{
			ID:       req.ID,
			Name:     req.Name,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, e.defaultTimeout)
	defer cancel()

	output, err := e.registry.Execute(execCtx, req.Name, req.Input)
	if execCtx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("tool execution timeout after %v", e.defaultTimeout)
	}

	return Result{
		ID:       req.ID,
		Name:     req.Name,
		Output:   output,
		Error:    err,
		Duration: time.Since(start),
	}
}

// ValidateInput validates tool input against its schema
func (e *Executor) ValidateInput(toolName string, input json.RawMessage) error {
	t, exists := e.registry.Get(toolName)
	if !exists {
		return fmt.Errorf("tool %s not found", toolName)
	}
	return e.validator.ValidateInput(t.InputSchema(), input)
}

// ExecuteAll executes tool calls in sequence, preserving request order.
func (e *Executor) ExecuteAll(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	for i, req := range reqs {
		results[i] = e.Execute(ctx, req)
	}
	return results
}
