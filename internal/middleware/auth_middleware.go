package middleware

import (
	"net/http"
	"strings"

	"shopledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	ContextUserID    = "userID"
	ContextEmail     = "email"
	ContextShopName  = "shopName"
	ContextTenantKey = "tenantKey"
)

// AuthMiddleware creates a Gin middleware for JWT authentication. Every
// authenticated request carries a tenant key; handlers use it to address
// the caller's isolated shop store.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Use Bearer <token>"})
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			c.Abort()
			return
		}

		if claims.TenantKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token does not identify a shop"})
			c.Abort()
			return
		}

		// Set account information in the context for downstream handlers
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextShopName, claims.ShopName)
		c.Set(ContextTenantKey, claims.TenantKey)

		c.Next()
	}
}

// TenantKey extracts the authenticated tenant key from the request context.
// The boolean is false when AuthMiddleware did not run.
func TenantKey(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextTenantKey)
	if !exists {
		return "", false
	}
	key, ok := value.(string)
	return key, ok && key != ""
}
