package middleware

import (
	"net/http"

	"github.com/dinerozz/focus-guard-backend/internal/model/response/wrapper"
	"github.com/dinerozz/focus-guard-backend/internal/service/pairing"
	"github.com/gin-gonic/gin"
)

// AuthenticationMiddleware guards the admin configuration surface with the
// session token cookie issued by the auth endpoint.
func AuthenticationMiddleware(pairingService pairing.PairingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie("token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "Missing authentication token", Success: false})
			c.Abort()
			return
		}

		if err := pairingService.ValidateAdminToken(tokenString); err != nil {
			c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "Invalid authentication token", Success: false})
			c.Abort()
			return
		}

		c.Next()
	}
}

// APIKeyMiddleware guards the extension surface with the pairing API key.
func APIKeyMiddleware(pairingService pairing.PairingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")

		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{
				Message: "X-API-Key header is required",
				Success: false,
			})
			c.Abort()
			return
		}

		if !pairingService.ValidateAPIKey(apiKey) {
			c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{
				Message: "Invalid API key",
				Success: false,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
