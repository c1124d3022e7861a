package middleware

import "context"

type contextKey string

const (
	ctxUserID     contextKey = "user_id"
	ctxRole       contextKey = "actor_role"
	ctxSupplierID contextKey = "supplier_id"
)

// UserIDFromContext returns the authenticated user's ID, or "" when the
// request is anonymous.
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

// RoleFromContext returns the actor's membership role within their supplier.
func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRole)
}

// SupplierIDFromContext returns the supplier the actor operates as, or ""
// for users without a supplier membership.
func SupplierIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxSupplierID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	return withValue(ctx, ctxRole, role)
}

// WithSupplierID injects the supplier identifier into the context for
// downstream handlers.
func WithSupplierID(ctx context.Context, supplierID string) context.Context {
	return withValue(ctx, ctxSupplierID, supplierID)
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}
