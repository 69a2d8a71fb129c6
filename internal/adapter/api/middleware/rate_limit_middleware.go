package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"rentalhub/pkg/errors"
	"rentalhub/pkg/logger"
)

type Limiter interface {
	Allow(userID, action string) (bool, time.Duration)
}

// RateLimit throttles requests per authenticated user, or per client IP
// before authentication.
func RateLimit(limiter Limiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UserID(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			if allowed, wait := limiter.Allow(key, action); !allowed {
				logger.Warn("RATE LIMIT: %s blocked on %s for %v", key, action, wait)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return errors.TooManyRequests("Rate limit exceeded")
			}
			return next(c)
		}
	}
}
