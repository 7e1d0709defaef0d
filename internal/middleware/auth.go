// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hargapangan/pangan-backend/internal/i18n"
	"github.com/hargapangan/pangan-backend/internal/models"
	"github.com/hargapangan/pangan-backend/internal/utils"
)

// bearerToken pulls the raw token out of an "Authorization: Bearer <token>"
// header. Empty string when the header is absent or malformed.
func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func setIdentity(c *gin.Context, claims *utils.JWTClaims) {
	c.Set("user_id", claims.UserID)
	c.Set("username", claims.Username)
	c.Set("user_role", claims.Role)
}

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token := bearerToken(c)
		if token == "" {
			key := i18n.KeyAuthRequired
			if c.GetHeader("Authorization") != "" {
				key = i18n.KeyAuthInvalidToken
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, key),
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthTokenExpired),
			})
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		role, exists := c.Get("user_role")
		if !exists || role != string(models.UserRoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthAccessDenied),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ElevatedRequired admits officers and admins. Officers verify reports and
// decide override requests; regular users never reach these routes.
func ElevatedRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		role, exists := c.Get("user_role")
		roleStr, _ := role.(string)
		if !exists || !models.UserRole(roleStr).IsElevated() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthAccessDenied),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid bearer token is
// sent but never rejects the request. Public price and commodity reads use
// it so audit rows name the user when one is logged in.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := utils.ValidateJWT(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}
