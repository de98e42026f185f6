// Package compaction keeps a growing conversation within a model's token
// budget by selectively degrading older content while preserving recent,
// load-bearing context.
//
// # Pipeline
//
// A Pipeline holds a registry of passes, each a named heuristic gated by a
// token budget ratio threshold. On every Run the pipeline computes
// tokenUsage/tokenLimit, selects the passes whose threshold the ratio has
// reached, and threads the messages through them in ascending-threshold
// order, so cheaper passes always run before more aggressive ones:
//
//	pipeline := compaction.NewPipeline(logger)
//	pipeline.Register(compaction.NewToolResponsePruner())
//
//	result := pipeline.Run(messages, compaction.Context{
//	    TokenUsage:       usage,
//	    TokenLimit:       200000,
//	    RecentWindowSize: 3,
//	})
//
// The returned Result carries the possibly-rewritten messages and a Report
// listing the passes that ran, one audit Entry per rewritten tool result,
// and the estimated tokens saved.
//
// # Guarantees
//
// Every pass preserves message count, order, and identity; it only shrinks
// the result text of individual tool calls. Messages at or after the
// protection boundary (the last RecentWindowSize user turns, see Boundary)
// are never altered. Untouched messages are shared with the input slice;
// rewritten ones are fresh copies, so the caller's conversation is never
// mutated in place.
//
// # Tool-Response Pruner
//
// The one pass shipped here activates at 50% context usage. Error results
// longer than 500 characters keep their first 500 characters plus a count
// marker; other results longer than 1500 characters are replaced entirely
// with a placeholder naming the tool and the original size. A rewrite is
// applied only when it makes the result strictly smaller. Savings are
// estimated at ~4 characters per token, never exactly counted. Additional
// passes (deeper summarization, role-specific elision) can be registered at
// other thresholds through the same Pass interface.
//
// # Token accounting
//
// TokenCounter supplies Context.TokenUsage, preferring the Claude token
// counting API with a character-approximation fallback. Counts are cached
// by content hash with a TTL and refreshed lazily on read.
package compaction
