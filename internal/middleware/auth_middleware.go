package middleware

import (
	"crypto/subtle"
	"net/http"

	"recoEngine/business/bandit"
	"recoEngine/pkg/logger"

	"github.com/labstack/echo/v4"
)

const HeaderAPIKey = "X-API-Key"

// APIKeyMiddleware rejects requests whose X-API-Key does not match key.
// An empty key disables the check.
func APIKeyMiddleware(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if key == "" {
			return next
		}
		want := []byte(key)

		return func(c echo.Context) error {
			got := c.Request().Header.Get(HeaderAPIKey)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				logger.Warn("unauthorized_request",
					"trace_id", bandit.TraceIDFromContext(c.Request().Context()),
					"path", c.Path(),
				)
				return c.JSON(http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
			}

			return next(c)
		}
	}
}
