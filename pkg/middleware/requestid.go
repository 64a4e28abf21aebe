package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/burstline/core/pkg/logger"
)

// RequestID assigns a correlation ID to every request, echoes it in the
// response header and logs the request with it.
func RequestID(log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		reqLogger := log.WithRequestID(requestID)
		start := time.Now()

		next(w, r.WithContext(reqLogger.ToContext(r.Context())))

		reqLogger.Debug().
			Str("action", "request_handled").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}
