package rest

import (
	"net/http"

	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindUpstream:
		return http.StatusBadGateway
	case apperror.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

const (
	internalErrorMessage     = "internal server error"
	dataInconsistencyMessage = "internal data inconsistency"
)

// respondError logs the full error chain and sends the client only the
// message of the error's kind, never the wrapped cause.
func respondError(c echo.Context, op string, err error) error {
	status := StatusFor(err)

	var message string
	switch apperror.KindOf(err) {
	case apperror.KindInternal:
		message = internalErrorMessage
	case apperror.KindDataInconsistency:
		message = dataInconsistencyMessage
	default:
		message = apperror.MessageOf(err)
	}

	if status >= http.StatusInternalServerError {
		logger.Error(op, "path", c.Path(), "status", status, "error", err)
	} else {
		logger.Debug(op, "path", c.Path(), "status", status, "error", err)
	}

	return c.JSON(status, ResponseError{Message: message})
}

// MessageResponse acknowledges a request that has no payload to return.
type MessageResponse struct {
	Message string `json:"message"`
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
}
