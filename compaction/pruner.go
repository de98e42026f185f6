package compaction

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agentctx/agentctx/types"
)

const (
	// PrunerName is the registered name of the tool-response pruner.
	PrunerName = "tool-response-pruner"

	// PrunerThreshold is the token budget ratio at which the pruner activates.
	PrunerThreshold = 0.5

	// ErrorKeepChars is how much of an oversized error result is kept.
	ErrorKeepChars = 500

	// PruneChars is the size above which a non-error result is replaced
	// entirely with a placeholder.
	PruneChars = 1500
)

// errorMarkerPrefix starts the marker appended to truncated error results.
// The pruner recognizes it to avoid re-truncating its own output.
const errorMarkerPrefix = "\n[truncated: error output was "

func errorMarker(originalLen int) string {
	return fmt.Sprintf("%s%d chars]", errorMarkerPrefix, originalLen)
}

func elidedPlaceholder(toolName string, originalLen int) string {
	return fmt.Sprintf("[%s output elided: %d chars]", toolName, originalLen)
}

// ToolResponsePruner shrinks oversized tool results in messages older than
// the protection boundary. Error results keep their first ErrorKeepChars
// characters plus a count marker; other oversized results are replaced with
// a placeholder naming the tool and the original size. A rewrite is applied
// only when it makes the result strictly smaller.
type ToolResponsePruner struct{}

// NewToolResponsePruner creates the pruner pass.
func NewToolResponsePruner() *ToolResponsePruner {
	return &ToolResponsePruner{}
}

// Name implements Pass.
func (p *ToolResponsePruner) Name() string {
	return PrunerName
}

// Threshold implements Pass.
func (p *ToolResponsePruner) Threshold() float64 {
	return PrunerThreshold
}

// Compact implements Pass. Only messages with at least one rewritten tool
// call are copied; all others are shared with the input slice.
func (p *ToolResponsePruner) Compact(messages []*types.Message, ctx Context) Result {
	boundary := Boundary(messages, ctx.RecentWindowSize)

	out := messages
	copied := false
	var entries []Entry

	for i := 0; i < boundary; i++ {
		msg := messages[i]
		if len(msg.ToolCalls) == 0 {
			continue
		}

		var rewritten *types.Message
		for j := range msg.ToolCalls {
			tc := &msg.ToolCalls[j]
			if !tc.HasResult() {
				continue
			}

			result := tc.ResultText()
			compacted, ok := p.pruneResult(tc.Name, result, tc.IsError)
			if !ok {
				continue
			}

			if rewritten == nil {
				if !copied {
					out = make([]*types.Message, len(messages))
					copy(out, messages)
					copied = true
				}
				rewritten = msg.Clone()
				out[i] = rewritten
			}
			rewritten.ToolCalls[j].SetResult(compacted, tc.IsError)

			entries = append(entries, Entry{
				MessageIndex:  i,
				ToolCallID:    tc.ID,
				ToolName:      tc.Name,
				Action:        ActionTruncated,
				OriginalSize:  len(result),
				CompactedSize: len(compacted),
			})
		}
	}

	if len(entries) == 0 {
		return Result{Messages: messages}
	}

	return Result{
		Messages: out,
		Report: Report{
			PassesRun:            []string{PrunerName},
			Entries:              entries,
			EstimatedTokensSaved: estimatedSavings(entries),
		},
	}
}

// pruneResult returns the compacted form of a tool result, or ok=false when
// the result is small enough to keep.
func (p *ToolResponsePruner) pruneResult(toolName, result string, isError bool) (string, bool) {
	switch {
	case isError && len(result) > ErrorKeepChars && !p.alreadyTruncated(result):
		compacted := truncateError(result)
		// An error result only slightly over the limit would gain more
		// marker than it loses; rewriting must only ever shrink.
		if len(compacted) >= len(result) {
			return "", false
		}
		return compacted, true
	case !isError && len(result) > PruneChars:
		return elidedPlaceholder(toolName, len(result)), true
	default:
		return "", false
	}
}

// truncateError keeps the first ErrorKeepChars bytes of an error result,
// backed off to a rune boundary so the kept prefix stays valid UTF-8, and
// appends the count marker.
func truncateError(result string) string {
	keep := ErrorKeepChars
	for keep > 0 && !utf8.RuneStart(result[keep]) {
		keep--
	}
	return result[:keep] + errorMarker(len(result))
}

// alreadyTruncated reports whether a result is the pruner's own output.
// A truncated error result is the kept prefix, at most ErrorKeepChars bytes
// and possibly a few less after the rune-boundary backoff, followed by the
// marker; so the marker starts within utf8.UTFMax-1 bytes of ErrorKeepChars.
// This keeps repeated runs from rewriting the same result over and over.
func (p *ToolResponsePruner) alreadyTruncated(result string) bool {
	if len(result) <= ErrorKeepChars {
		return false
	}
	lo := ErrorKeepChars - (utf8.UTFMax - 1)
	hi := ErrorKeepChars + len(errorMarkerPrefix)
	if hi > len(result) {
		hi = len(result)
	}
	return strings.Contains(result[lo:hi], errorMarkerPrefix)
}
