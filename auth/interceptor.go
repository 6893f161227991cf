package auth

import (
	"context"
	"slices"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	RolesKey  contextKey = "roles"
)

// MethodPolicy lists the full gRPC method names that skip authentication and
// the ones restricted to the admin role.
type MethodPolicy struct {
	Public    map[string]struct{}
	AdminOnly map[string]struct{}
}

// AuthInterceptor handles JWT validation for incoming gRPC calls.
func AuthInterceptor(tokens *TokenIssuer, policy MethodPolicy) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		// 1. Skip authentication for public methods
		if _, ok := policy.Public[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		// 2. Extract metadata (headers) from the incoming gRPC context
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "metadata is missing")
		}

		// 3. Retrieve the Authorization header, expecting "Bearer <token>"
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "authorization token is missing")
		}
		tokenStr := strings.TrimPrefix(values[0], "Bearer ")

		// 4. Validate the JWT and extract claims
		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		// 5. Enforce the admin role on moderation methods
		if _, adminOnly := policy.AdminOnly[info.FullMethod]; adminOnly && !slices.Contains(claims.Roles, RoleAdmin) {
			return nil, status.Error(codes.PermissionDenied, "admin role required")
		}

		return handler(WithIdentity(ctx, claims.UserID, claims.Roles), req)
	}
}

// WithIdentity injects the actor identity consumed by the service layer.
func WithIdentity(ctx context.Context, userID string, roles []string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RolesKey, roles)
}

// UserIDFromContext returns the authenticated actor, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

func HasRole(ctx context.Context, role string) bool {
	roles, _ := ctx.Value(RolesKey).([]string)
	return slices.Contains(roles, role)
}
