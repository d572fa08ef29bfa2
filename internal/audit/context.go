package audit

import "context"

type sessionKey struct{}

// WithSession tags ctx with the MCP session id recorded on events
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFrom returns the session id set by WithSession, or ""
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
