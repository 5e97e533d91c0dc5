package middlewares

import (
	"net/http"
	"strings"

	"github.com/chocobaby727/taskhub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (auth.Principal, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth resolves the caller's identity from the bearer token. Missing,
// malformed, unsigned and expired tokens all get the same opaque 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid access token",
				},
			})
			return
		}

		principal, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Invalid or expired access token",
				},
			})
			return
		}

		c.Set(ctxPrincipalKey, principal)

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func PrincipalFromContext(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func UserIDFromContext(c *gin.Context) (int64, bool) {
	p, ok := PrincipalFromContext(c)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}

func RoleFromContext(c *gin.Context) (string, bool) {
	p, ok := PrincipalFromContext(c)
	if !ok {
		return "", false
	}
	return p.Role, true
}
