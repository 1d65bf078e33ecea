package middleware

import (
	"net/http"
	"time"

	"golang-backtest/internal/dto"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// NewRateLimiterMiddleware limits requests per client IP. Health and metrics
// endpoints are never limited.
func NewRateLimiterMiddleware(requestsPerSecond float64, burst int, expiresIn time.Duration) echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Path()
			return path == "/health" || path == "/metrics"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(requestsPerSecond),
				Burst:     burst,
				ExpiresIn: expiresIn,
			},
		),

		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},

		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, dto.NewBaseResponse(http.StatusForbidden, "Access forbidden: Rate limiter error occurred", nil))
		},

		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, dto.NewBaseResponse(http.StatusTooManyRequests, "Too many requests: Rate limit exceeded. Please try again later", nil))
		},
	}

	return middleware.RateLimiterWithConfig(config)
}
