package compaction

import (
	"github.com/agentctx/agentctx/types"
)

// Boundary computes the index separating compactable (older) messages from
// protected (recent) ones. It scans backward counting user-role messages and
// returns the index of the user message at which the count reaches
// recentWindowSize: that user turn and everything after it is protected.
//
// If the conversation holds fewer than recentWindowSize user messages the
// whole conversation is protected and 0 is returned. Values of
// recentWindowSize below 1 are clamped to 1, so at least one user turn is
// always protected when any exists.
func Boundary(messages []*types.Message, recentWindowSize int) int {
	if recentWindowSize < 1 {
		recentWindowSize = 1
	}

	seen := 0
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == types.RoleUser {
			seen++
			if seen == recentWindowSize {
				return i
			}
		}
	}

	return 0
}
