package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"adboard/utils"
)

const (
	// ContextUsernameKey stores the authenticated admin username in Gin context.
	ContextUsernameKey = "username"
	// ContextIsAdminKey stores the already-validated admin flag.
	ContextIsAdminKey = "is_admin"
)

// AdminRequired ensures the request carries a valid admin JWT. Everything
// behind it may treat the caller as the authenticated administrator.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil || !claims.Admin {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextIsAdminKey, true)
		ctx.Next()
	}
}
