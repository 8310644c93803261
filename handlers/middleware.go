package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-Id"

// RequestLoggerMiddleware attaches a request-scoped zerolog logger to the
// request context, so services can log through zerolog.Ctx, and logs every
// completed request at debug level.
func RequestLoggerMiddleware(logger zerolog.Logger) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		requestID := e.Request.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		e.Response.Header().Set(RequestIDHeader, requestID)

		reqLogger := logger.With().
			Str("request_id", requestID).
			Str("method", e.Request.Method).
			Str("path", e.Request.URL.Path).
			Logger()
		e.Request = e.Request.WithContext(reqLogger.WithContext(e.Request.Context()))

		start := time.Now()
		err := e.Next()

		ev := reqLogger.Debug()
		if err != nil {
			ev = reqLogger.Warn().Err(err)
		}
		ev.Dur("duration", time.Since(start)).Msg("request")
		return err
	}
}
