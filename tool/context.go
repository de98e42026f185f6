package tool

import "context"

type contextKey string

const sessionIDKey contextKey = "agentctx_session_id"

// WithSessionID attaches the session ID to the context passed to tools.
// The agent sets this before every tool round.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext extracts the session ID a tool is running under.
// Returns false when the tool was invoked outside an agent turn.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}
