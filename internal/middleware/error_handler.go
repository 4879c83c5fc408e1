package middleware

import (
	"errors"
	"net/http"

	"recoEngine/business/bandit"
	"recoEngine/pkg/logger"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Message string `json:"message"`
}

// ErrorHandler renders errors that escaped a handler as {"message": ...}.
// Internal details of 5xx errors are logged but not returned.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("unhandled_error",
			"trace_id", bandit.TraceIDFromContext(c.Request().Context()),
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Message: msg})
	}
	if err != nil {
		logger.Warn("failed to write error response", "error", err)
	}
}
