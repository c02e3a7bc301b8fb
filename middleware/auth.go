// Package middleware contains gin middleware.
package middleware

import (
	"errors"
	"net/http"

	"github.com/eventsoc/soc-backend/service"

	"github.com/gin-gonic/gin"
)

const authContextKey = "authContext"

// RequireAuth admits the request through the auth gate before any handler
// runs. The resulting AuthContext is stored on the request; handlers read
// it with AuthContext. Admission is re-run on every request, never cached.
func RequireAuth(auth *service.AuthService, requireAdmin bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw, err := service.TokenFromHeader(ctx.GetHeader("Authorization"))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		authCtx, err := auth.Admit(ctx.Request.Context(), raw, requireAdmin)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInsufficientPrivilege):
				ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			case errors.Is(err, service.ErrPersistence):
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			default:
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			}
			return
		}

		ctx.Set(authContextKey, authCtx)
		ctx.Next()
	}
}

// AuthContext returns the admission decision stored by RequireAuth.
func AuthContext(ctx *gin.Context) *service.AuthContext {
	value, ok := ctx.Get(authContextKey)
	if !ok {
		return nil
	}
	authCtx, _ := value.(*service.AuthContext)
	return authCtx
}
