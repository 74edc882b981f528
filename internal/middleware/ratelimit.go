package middleware

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mahora/task-tracker/internal/constants"
	apierrors "github.com/mahora/task-tracker/internal/errors"
)

// Limiter counts attempts per key and reports whether another one is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimitByIP throttles requests per client IP. When the limiter itself
// fails the request is let through and the failure is logged.
func RateLimitByIP(limiter Limiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request",
				"request_id", GetRequestID(c),
				"error", err,
			)
			c.Next()
			return
		}

		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header(constants.HeaderRetryAfter, strconv.Itoa(seconds))
			apierrors.TooManyRequests(c, "Too many login attempts, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
