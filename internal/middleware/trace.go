package middleware

import (
	"strconv"
	"time"

	"quixellMarket/business/recommendation"
	"quixellMarket/pkg/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestID reuses an incoming X-Request-ID or assigns a fresh uuid, echoes
// it back and stores it in the request context as the trace id.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}

			c.Response().Header().Set(echo.HeaderXRequestID, id)
			c.Set("trace_id", id)
			c.SetRequest(req.WithContext(recommendation.WithTraceID(req.Context(), id)))

			return next(c)
		}
	}
}

// Metrics records latency and status per route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				// the error handler has not written yet
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = 500
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()

			return err
		}
	}
}
