package middleware

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = contextKey("userID")
	rolesKey  = contextKey("roles")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return UserIDFromCtx(c.Request.Context())
}

// UserIDFromCtx retrieves the authenticated user ID from a standard context.
func UserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// RolesFromCtx returns the roles granted by the caller's token.
func RolesFromCtx(ctx context.Context) []string {
	roles, _ := ctx.Value(rolesKey).([]string)
	return roles
}

// HasRole reports whether the authenticated caller holds role.
func HasRole(ctx context.Context, role string) bool {
	return slices.Contains(RolesFromCtx(ctx), role)
}
