package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys shared with the request middleware: the request ID set by the
// request-id middleware and the per-request logger set by Middleware (and
// enriched with session fields by the auth middleware).
const (
	RequestIDKey = "X-Request-ID"
	loggerKey    = "logger"
)

// FromContext returns the request-scoped logger for this request. Before
// Middleware has run (or outside a request entirely, as in tests) it falls
// back to the global logger tagged with whatever request ID is available.
func FromContext(c echo.Context) *zap.Logger {
	if lg, ok := c.Get(loggerKey).(*zap.Logger); ok {
		return lg
	}
	return GetLogger().With(zap.String("request_id", requestIDFrom(c)))
}

func requestIDFrom(c echo.Context) string {
	if id, ok := c.Get(RequestIDKey).(string); ok && id != "" {
		return id
	}
	if id := c.Request().Header.Get(RequestIDKey); id != "" {
		return id
	}
	return "unknown"
}
