package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mkrupp/newsletterhub/internal/infra/logging"
)

type accessLogKey struct{}

// accessLog collects what inner handlers learn about a request, so the
// response line can report it.
type accessLog struct {
	userID string
}

func withAccessLog(ctx context.Context) (context.Context, *accessLog) {
	entry := &accessLog{}

	return context.WithValue(ctx, accessLogKey{}, entry), entry
}

// recordUser attaches the authenticated user to the access log of the request.
func recordUser(ctx context.Context, userID string) {
	if entry, ok := ctx.Value(accessLogKey{}).(*accessLog); ok {
		entry.userID = userID
	}
}

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter

	status      int
	bytesSent   int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true

	n, err := w.ResponseWriter.Write(b)
	w.bytesSent += n

	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}

	return n, nil
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func responseLevel(status int) logging.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return logging.LevelError
	case status >= http.StatusBadRequest:
		return logging.LevelWarn
	default:
		return logging.LevelInfo
	}
}

// LoggingMiddleware logs each request at DEBUG and its response at INFO, WARN
// for 4xx or ERROR for 5xx. The response line names the matched route and,
// behind AuthorizingMiddleware, the authenticated user.
func LoggingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx, entry := withAccessLog(r.Context())
		r = r.WithContext(ctx)

		log.DebugContext(ctx, "request", logging.Group("http",
			"method", r.Method,
			"uri", r.RequestURI,
		))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		attrs := []any{
			"method", r.Method,
			"uri", r.RequestURI,
			"route", r.Pattern,
			"status", rec.status,
			"bytes_sent", rec.bytesSent,
			"duration", time.Since(start),
		}

		if entry.userID != "" {
			attrs = append(attrs, "user", entry.userID)
		}

		log.Log(ctx, responseLevel(rec.status), "response", logging.Group("http", attrs...))
	})
}
