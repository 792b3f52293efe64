package httphandler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nuid"
)

const requestIDHeader = "X-Request-Id"

// responseRecorder remembers what the handler sent so the access log and
// panic recovery can act on it.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (rr *responseRecorder) WriteHeader(status int) {
	if !rr.wroteHeader {
		rr.status = status
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(status)
}

func (rr *responseRecorder) Write(p []byte) (int, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	n, err := rr.ResponseWriter.Write(p)
	rr.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rr *responseRecorder) Unwrap() http.ResponseWriter { return rr.ResponseWriter }

// healthPath is polled by cmd/healthcheck every few seconds.
const healthPath = "/api/v1/health"

// accessLevel logs successful health probes at debug so they do not drown
// out real traffic.
func accessLevel(path string, status int) slog.Level {
	if path == healthPath && status < http.StatusBadRequest {
		return slog.LevelDebug
	}
	if status >= http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// requestID returns the caller's X-Request-Id when it looks sane, or a new one.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(requestIDHeader)); id != "" && len(id) <= 64 {
		return id
	}
	return nuid.Next()
}

// accessLogMiddleware tags every response with a request ID, marks status
// API payloads as uncacheable, and writes one access log line per request.
func accessLogMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := requestID(r)

		w.Header().Set(requestIDHeader, id)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store")
		}

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Log(r.Context(), accessLevel(r.URL.Path, rec.status), "http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"remote", r.RemoteAddr,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware turns a handler panic into a logged 500. When the
// handler already started its response the status line cannot change, so
// the panic is only logged.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := w.(*responseRecorder)
		if !ok {
			rec = &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		}

		defer func() {
			v := recover()
			if v == nil {
				return
			}
			logger.Error("panic recovered",
				"panic", v,
				"path", r.URL.Path,
				"request_id", w.Header().Get(requestIDHeader),
				"response_started", rec.wroteHeader,
			)
			if !rec.wroteHeader {
				writeError(rec, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(rec, r)
	})
}
