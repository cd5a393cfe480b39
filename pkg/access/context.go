package access

import "context"

type contextKey struct{}

// WithContext stores the caller's role in ctx.
func WithContext(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// FromContext returns the caller's role. A context without one belongs
// to an Anonymous caller.
func FromContext(ctx context.Context) Role {
	if r, ok := ctx.Value(contextKey{}).(Role); ok {
		return r
	}
	return Anonymous
}
