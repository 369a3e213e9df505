package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AttemptCounter counts login attempts per client address within a window.
type AttemptCounter interface {
	IncrementLoginAttempts(ctx context.Context, clientIP string, window time.Duration) (int64, error)
}

// LoginRateLimiter rejects a client with 429 once it exceeds maxAttempts within window.
// If the counter is unavailable the request is let through.
func LoginRateLimiter(counter AttemptCounter, maxAttempts int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		count, err := counter.IncrementLoginAttempts(c.Request.Context(), clientIP, window)
		if err != nil {
			logrus.WithError(err).WithField("client_ip", clientIP).Warn("Login rate limit unavailable")
			c.Next()
			return
		}

		if count > int64(maxAttempts) {
			logrus.WithFields(logrus.Fields{
				"client_ip": clientIP,
				"attempts":  count,
			}).Warn("Too many login attempts")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many login attempts, please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
