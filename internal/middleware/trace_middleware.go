package middleware

import (
	"recoEngine/business/bandit"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TraceID propagates X-Request-ID, generating one when absent, into the
// request context so every log line of the request shares it.
func TraceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			tid := req.Header.Get(echo.HeaderXRequestID)
			if tid == "" {
				tid = uuid.NewString()
			}

			c.SetRequest(req.WithContext(bandit.WithTraceID(req.Context(), tid)))
			c.Response().Header().Set(echo.HeaderXRequestID, tid)

			return next(c)
		}
	}
}
