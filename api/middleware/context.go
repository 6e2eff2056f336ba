package middleware

import "context"

type contextKey string

const (
	ctxIdentityID contextKey = "identity_id"
	ctxAdminRole  contextKey = "admin_role"
)

// IdentityIDFromContext returns the caller's external identity string, empty
// when the request carried none.
func IdentityIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxIdentityID).(string); ok {
		return v
	}
	return ""
}

// AdminRoleFromContext returns the verified admin role, empty for
// non-admin requests.
func AdminRoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminRole).(string); ok {
		return v
	}
	return ""
}

// WithIdentityID injects the external identity into the context.
func WithIdentityID(ctx context.Context, identityID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentityID, identityID)
}

// WithAdminRole injects the verified admin role into the context.
func WithAdminRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAdminRole, role)
}
