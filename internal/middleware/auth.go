package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/pkg/auth"
	"github.com/gin-gonic/gin"
)

// Context keys set by ServiceAuth
const (
	ContextSubject = "token_subject"
	ContextScope   = "token_scope"
)

// RevocationChecker reports whether a token has been blacklisted
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// ServiceAuth validates a service token carrying scope and injects its
// subject into the context.
func ServiceAuth(jwtManager *auth.JWTManager, revocations RevocationChecker, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Invalid authorization format. Use: Bearer <token>"})
			return
		}

		tokenString := strings.TrimSpace(parts[1])

		revoked, err := revocations.IsRevoked(c.Request.Context(), tokenString)
		if err != nil {
			// fail closed
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Auth server error"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Token has been revoked"})
			return
		}

		claims, err := jwtManager.ValidateServiceToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Invalid or expired token"})
			return
		}
		if claims.Scope != scope {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{Error: "Token scope does not allow this operation"})
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextScope, claims.Scope)

		c.Next()
	}
}
