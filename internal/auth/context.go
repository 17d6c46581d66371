package auth

import "context"

type userIDKey struct{}

// WithUserID stamps the authenticated user onto the request context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID reads the authenticated user set by the gate middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok
}
