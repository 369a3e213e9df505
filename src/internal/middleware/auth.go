package middleware

import (
	"net/http"
	"strings"
	"whisp-chat-svc/src/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const UserIDKey = "user_id"

// AuthMiddleware guards REST routes with the same gate the socket uses.
type AuthMiddleware struct {
	gate *realtime.Gate
}

func NewAuthMiddleware(gate *realtime.Gate) *AuthMiddleware {
	return &AuthMiddleware{gate: gate}
}

// RequireAuth validates the bearer token and stores the user id in the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := m.gate.Admit(BearerToken(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication error",
			})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)

		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"path":    c.FullPath(),
		}).Debug("User authenticated successfully")

		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		logrus.Debug("Invalid authorization header format")
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}
