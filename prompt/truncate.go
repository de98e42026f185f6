package prompt

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/agentctx/agentctx/compaction"
)

// TruncateThreshold is the size below which an old tool result is left
// alone regardless of age; trimming it would not repay the churn.
const TruncateThreshold = 200

// TruncateStats summarizes one in-place trim of the prompt buffer.
type TruncateStats struct {
	// Truncated is the number of tool result blocks that were replaced.
	Truncated int

	// TokensSaved is the estimated token reduction, at ~4 chars per token.
	TokensSaved int
}

func truncatedPlaceholder(originalLen int) string {
	return fmt.Sprintf("[tool result truncated: was %d chars]", originalLen)
}

// TruncateOldToolResults trims aged tool results from the prompt buffer
// between tool-calling rounds. The newest keepRecentResults result blocks
// are kept whole; every older block longer than TruncateThreshold is
// overwritten with a placeholder noting its original length.
//
// The buffer is mutated in place: the caller owns it exclusively for the
// duration of the call, which is safe because the buffer is rebuilt fresh
// every turn and never shared or persisted. Unlike the stored-conversation
// pipeline this runs on every tool round, so it uses a cheap recency-only
// rule instead of a token-ratio-gated, turn-aware one.
func TruncateOldToolResults(buffer []anthropic.MessageParam, keepRecentResults int) TruncateStats {
	var stats TruncateStats
	seen := 0

	// Newest-first scan so the keep budget covers the most recent results.
	for i := len(buffer) - 1; i >= 0; i-- {
		content := buffer[i].Content
		for j := len(content) - 1; j >= 0; j-- {
			tr := content[j].OfToolResult
			if tr == nil {
				continue
			}

			seen++
			if seen <= keepRecentResults {
				continue
			}

			length := toolResultLength(tr)
			if length <= TruncateThreshold {
				continue
			}

			placeholder := truncatedPlaceholder(length)
			content[j] = anthropic.NewToolResultBlock(tr.ToolUseID, placeholder, tr.IsError.Or(false))

			stats.Truncated++
			if diff := length - len(placeholder); diff > 0 {
				stats.TokensSaved += (diff + compaction.CharsPerToken - 1) / compaction.CharsPerToken
			}
		}
	}

	return stats
}

// toolResultLength sums the character length of a tool result's text
// content. Non-text content (images, search results) contributes nothing.
func toolResultLength(tr *anthropic.ToolResultBlockParam) int {
	total := 0
	for _, c := range tr.Content {
		if c.OfText != nil {
			total += len(c.OfText.Text)
		}
	}
	return total
}
