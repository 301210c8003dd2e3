package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"catchup-server/internal/handler/http/requestid"
	"catchup-server/internal/handler/http/respond"
	"catchup-server/internal/handler/http/responsewriter"
	"catchup-server/internal/observability/logging"
)

// Middleware wraps an http.Handler.
type Middleware = func(http.Handler) http.Handler

// Chain wraps h so that mws[0] sees the request first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := range mws {
		h = mws[len(mws)-1-i](h)
	}
	return h
}

// Logging stores a request-ID-tagged logger in the request context and
// writes one "request completed" line per request, at ERROR for 5xx.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := logging.WithRequestID(r.Context(), logger)
			r = r.WithContext(logging.WithLogger(r.Context(), l))
			rw := responsewriter.Wrap(w)

			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			if rw.StatusCode() >= 500 {
				level = slog.LevelError
			}
			l.LogAttrs(r.Context(), level, "request completed", completedAttrs(r, rw, time.Since(start))...)
		})
	}
}

func completedAttrs(r *http.Request, rw *responsewriter.ResponseWriter, elapsed time.Duration) []slog.Attr {
	return []slog.Attr{
		slog.String("trace_id", trace.SpanContextFromContext(r.Context()).TraceID().String()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("query", r.URL.RawQuery),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("user_agent", r.UserAgent()),
		slog.Int("status", rw.StatusCode()),
		slog.Int64("bytes", rw.BytesWritten()),
		slog.Duration("duration", elapsed),
		slog.Float64("duration_ms", float64(elapsed.Microseconds())/1000),
	}
}

// Recover answers a panicking request with a JSON 500 and logs the stack.
// http.ErrAbortHandler keeps propagating so net/http drops the connection.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}
				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", v),
					slog.String("stack", string(debug.Stack())))
				respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("panic: %v", v))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
