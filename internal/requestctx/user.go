// Package requestctx carries the authenticated identity through a request.
package requestctx

import "context"

type userIDKey struct{}

// WithUserID stores the verified user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID returns the verified user id, and false if the request never
// passed the authorization gate.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}
