// Package requestctx carries per-request identity through context.
package requestctx

import "context"

// Admin describes the operator verified for the current request.
type Admin struct {
	Email string
	Role  string
}

type adminContextKey struct{}

// WithAdmin stores the verified operator in context.
func WithAdmin(ctx context.Context, admin Admin) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, adminContextKey{}, admin)
}

// AdminFromContext returns the verified operator, if any.
func AdminFromContext(ctx context.Context) (Admin, bool) {
	if ctx == nil {
		return Admin{}, false
	}
	value, ok := ctx.Value(adminContextKey{}).(Admin)
	return value, ok
}
