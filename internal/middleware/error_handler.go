package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"quixellMarket/pkg/logger"

	jsonres "quixellMarket/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders errors that reach echo itself: unknown routes,
// method mismatches, rate limiting and panics caught by Recover.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"
	var details interface{}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
		if he.Internal != nil {
			details = he.Internal.Error()
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error", "path", c.Path(), "error", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, jsonres.Error(errorCode(code), message, details))
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", writeErr)
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_SERVER_ERROR"
		}
		return "ERROR"
	}
}
