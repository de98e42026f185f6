// Package agentctx is a conversational agent turn handler with automatic
// context compaction.
//
// The heart of the module is the compaction subsystem (see the compaction
// package): a pipeline of threshold-gated passes that keeps a growing
// conversation within the model's token budget by degrading older tool
// results while protecting the most recent user turns. The Agent here is
// the caller the pipeline is designed for: it holds per-session histories
// in memory, runs the multi-round tool-calling loop against the Anthropic
// API, and applies two independent trims:
//
//   - before every model call, the compaction pipeline runs over the
//     stored history, gated by the token budget ratio;
//   - between tool rounds, the ephemeral prompt buffer is trimmed with a
//     cheap recency-only rule (see the prompt package).
//
// Compaction output is never written back to the stored history; only the
// prompt assembled for the model is degraded.
//
// # Quick Start
//
//	client := anthropic.NewClient()
//	agent, err := agentctx.New(
//	    agentctx.Config{
//	        Client:       &client,
//	        Model:        "claude-sonnet-4-5-20250929",
//	        SystemPrompt: "You are a helpful assistant",
//	    },
//	    agentctx.WithMaxTokens(4096),
//	    agentctx.WithRecentWindowSize(3),
//	)
//
//	sessionID := agent.NewSession()
//	response, err := agent.Run(ctx, sessionID, "Summarize the build logs")
//
// # Custom Tools
//
// Implement the tool.Tool interface and register it with WithTools or
// RegisterTool; tool results flow into the conversation and become the raw
// material compaction later degrades.
//
// # Custom Passes
//
// Additional compaction heuristics can be registered with WithPass; the
// pipeline orders passes by threshold so cheaper ones always run first.
//
// HTTP transport, authentication, and durable conversation storage are out
// of scope: the Agent exposes plain Go APIs and owns nothing but in-memory
// state.
package agentctx
