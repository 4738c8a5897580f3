package types

import "context"

// contextKey is an unexported type for context keys defined in this package,
// preventing collisions with keys defined elsewhere.
type contextKey int

const messageIDKey contextKey = iota

// WithMessageID returns a context carrying the correlation ID of the queue
// message currently being handled. The dispatch loop sets it once per message;
// outbound provider clients propagate it as a request header.
func WithMessageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, messageIDKey, id)
}

// GetMessageID returns the message correlation ID from the context, or ""
// if none is set.
func GetMessageID(ctx context.Context) string {
	if id, ok := ctx.Value(messageIDKey).(string); ok {
		return id
	}
	return ""
}
