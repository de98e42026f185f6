package compaction

import (
	"github.com/agentctx/agentctx/types"
)

// Context carries the per-invocation token accounting the caller owns.
// It is supplied fresh on every Pipeline.Run call and never retained.
type Context struct {
	// TokenUsage is the number of tokens the conversation currently consumes.
	TokenUsage int

	// TokenLimit is the model's context window in tokens.
	TokenLimit int

	// RecentWindowSize is the number of most recent user turns that are
	// protected from compaction. Values below 1 are treated as 1.
	RecentWindowSize int
}

// Ratio returns the fraction of the context window already consumed.
// A non-positive TokenLimit yields 0, which deactivates every pass.
func (c Context) Ratio() float64 {
	if c.TokenLimit <= 0 {
		return 0
	}
	return float64(c.TokenUsage) / float64(c.TokenLimit)
}

// ActionTruncated is the action recorded when a tool result was shrunk.
const ActionTruncated = "truncated"

// Entry is one append-only audit record describing a single rewritten
// tool-call result.
type Entry struct {
	// MessageIndex is the position of the rewritten message in the input.
	MessageIndex int

	// ToolCallID identifies the tool call whose result was rewritten.
	ToolCallID string

	// ToolName is the name of the tool that produced the result.
	ToolName string

	// Action describes what was done (currently always ActionTruncated).
	Action string

	// OriginalSize is the result length in characters before the rewrite.
	OriginalSize int

	// CompactedSize is the result length in characters after the rewrite.
	// Always <= OriginalSize.
	CompactedSize int
}

// Report describes everything a pipeline run did.
type Report struct {
	// PassesRun lists, in execution order, the passes that changed something.
	PassesRun []string

	// Entries are the audit records contributed by those passes.
	Entries []Entry

	// EstimatedTokensSaved is the sum of ceil((original-compacted)/4) over
	// all entries. It is a heuristic, never an exact token count.
	EstimatedTokensSaved int
}

// Result is the outcome of a pass or a pipeline run. Messages has the same
// length and order as the input; untouched messages are shared with the
// input, rewritten ones are fresh copies.
type Result struct {
	Messages []*types.Message
	Report   Report
}

// Pass is one named, threshold-gated compaction heuristic.
//
// Implementations must be pure and deterministic for identical inputs, must
// never alter any message at or after Boundary(messages, ctx.RecentWindowSize),
// must only shrink tool-call result text (never role, order, or identity),
// and must return an empty report when they changed nothing.
type Pass interface {
	// Name returns the pass name used in reports and diagnostics.
	Name() string

	// Threshold is the token budget ratio at or above which the pass runs.
	Threshold() float64

	// Compact applies the heuristic to the messages strictly before the
	// protection boundary.
	Compact(messages []*types.Message, ctx Context) Result
}
