package api

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/propstore/propstore/internal/logger"
	"github.com/propstore/propstore/internal/telemetry"
)

// traceRequests wraps every request in a span so HTTP handling shows up in
// distributed traces. A no-op when telemetry is disabled.
func traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := telemetry.StartSpan(r.Context(), "http "+r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs every request through the internal logger and seeds
// the request context with a LogContext so downstream handlers inherit the
// request id and client address in their log lines.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			clientIP = host
		}

		lc := logger.NewLogContext(clientIP)
		lc.RequestID = middleware.GetReqID(r.Context())
		lc.TraceID = telemetry.TraceID(r.Context())
		lc.SpanID = telemetry.SpanID(r.Context())
		ctx := logger.WithContext(r.Context(), lc)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.DebugCtx(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"code", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.KeyDurationMs, logger.Duration(start),
		)
	})
}
