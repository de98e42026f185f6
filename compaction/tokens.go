package compaction

import (
	"github.com/agentctx/agentctx/types"
)

// CharsPerToken is the character-to-token approximation used everywhere an
// exact count is unavailable or too expensive.
const CharsPerToken = 4

// ApproximateTokens estimates token count from character count using
// ~4 characters per token, with a minimum of 1 token for non-empty text.
func ApproximateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := (len(text) + CharsPerToken - 1) / CharsPerToken
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// EstimateMessageTokens estimates tokens for a single message using the
// character approximation plus small structural overheads.
func EstimateMessageTokens(msg *types.Message) int {
	// ~4 tokens of overhead for role and message framing.
	total := 4

	total += ApproximateTokens(msg.Content)

	for i := range msg.ToolCalls {
		tc := &msg.ToolCalls[i]
		// Tool name + ID framing overhead.
		total += ApproximateTokens(tc.Name) + 10
		total += ApproximateTokens(tc.Input)
		if tc.HasResult() {
			total += ApproximateTokens(tc.ResultText())
		}
	}

	return total
}

// EstimateConversationTokens sums EstimateMessageTokens over all messages.
func EstimateConversationTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += EstimateMessageTokens(msg)
	}
	return total
}

// estimatedSavings sums ceil((original-compacted)/CharsPerToken) over the
// entries of one pass run. CompactedSize never exceeds OriginalSize, so the
// sum is non-negative.
func estimatedSavings(entries []Entry) int {
	total := 0
	for _, e := range entries {
		diff := e.OriginalSize - e.CompactedSize
		if diff <= 0 {
			continue
		}
		total += (diff + CharsPerToken - 1) / CharsPerToken
	}
	return total
}
