package tools

import "context"

type callIDKey struct{}

// WithCallID attaches the originating call id to ctx.
func WithCallID(ctx context.Context, callID string) context.Context {
	return context.WithValue(ctx, callIDKey{}, callID)
}

// CallIDFrom returns the call id attached by WithCallID, or "".
func CallIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}
