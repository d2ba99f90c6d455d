package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/mememadness/server/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const adminNameKey contextKey = "admin_name"

// AdminName extracts the authenticated admin's display name from the
// context. Returns empty string outside an admin-authenticated call.
func AdminName(ctx context.Context) string {
	name, _ := ctx.Value(adminNameKey).(string)
	return name
}

// RequireAdmin returns an interceptor that validates admin session tokens.
// It expects an "Authorization: Bearer <token>" header signed by the given
// manager; calls without a valid token are rejected with CodeUnauthenticated.
func RequireAdmin(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			ctx = context.WithValue(ctx, adminNameKey, claims.Name)
			return next(ctx, req)
		}
	}
}
