package backend

import "context"

type contextKey struct{}

// WithContext stores b in ctx.
func WithContext(ctx context.Context, b *Backend) context.Context {
	return context.WithValue(ctx, contextKey{}, b)
}

// FromContext returns the backend stored in ctx, or nil.
func FromContext(ctx context.Context) *Backend {
	b, _ := ctx.Value(contextKey{}).(*Backend)
	return b
}
