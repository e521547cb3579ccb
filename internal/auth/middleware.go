package auth

import (
	"net/http"
	"strings"

	"codeberg.org/printableperks/server/internal/logger"
	"codeberg.org/printableperks/server/internal/quota"
	"github.com/gin-gonic/gin"
)

// validates JWT tokens and adds user info to context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := ValidateJWT(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)

		c.Next()
	}
}

// validates JWT if present but doesn't require it
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")

		if len(parts) == 2 && parts[0] == "Bearer" {
			claims, err := ValidateJWT(parts[1])

			if err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("user_email", claims.Email)
			}
		}

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")

	if !exists {
		return "", false
	}

	return userID.(string), true
}

// builds the quota caller identity for the request. Authenticated requests
// become registered callers; everything else is anonymous, keyed by the
// device key header. A fresh browser without a key gets one minted and
// echoed back so its counter is durable across requests.
func CallerFrom(c *gin.Context) quota.Caller {
	if userID, ok := GetUserID(c); ok {
		return quota.RegisteredCaller(userID)
	}

	deviceKey := c.GetHeader(HeaderDeviceKey)

	if deviceKey == "" {
		key, err := GenerateDeviceKey()
		if err != nil {
			// no entropy is effectively a broken host; fall back to a fixed
			// bucket that fails toward the shared anonymous limit
			logger.ErrorErr(err, "failed to mint device key")
			key = "unkeyed"
		}

		deviceKey = key
	}

	c.Header(HeaderDeviceKey, deviceKey)

	return quota.AnonymousCaller(deviceKey)
}
