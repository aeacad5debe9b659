package middleware

import (
	"context"
	"net/http"
	"time"

	"taskAssistant/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestInfoKey contextKey = "request_info"

// requestInfo is shared by pointer. Authenticate fills in userID after
// Logging has started.
type requestInfo struct {
	id     string
	userID uuid.UUID
}

func infoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

// ensureInfo returns the request's info, attaching a fresh one if needed.
func ensureInfo(r *http.Request) (*requestInfo, *http.Request) {
	if info := infoFrom(r.Context()); info != nil {
		return info, r
	}
	info := &requestInfo{}
	return info, r.WithContext(context.WithValue(r.Context(), requestInfoKey, info))
}

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, r := ensureInfo(r)
		info.id = r.Header.Get(RequestIDHeader)
		if info.id == "" {
			info.id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, info.id)

		next.ServeHTTP(w, r)
	})
}

func GetRequestID(ctx context.Context) string {
	if info := infoFrom(ctx); info != nil {
		return info.id
	}
	return ""
}

// setRequestUser records the authenticated caller for the HTTP_OUT line.
func setRequestUser(ctx context.Context, userID uuid.UUID) {
	if info := infoFrom(ctx); info != nil {
		info.userID = userID
	}
}

// statusRecorder captures what the handler wrote for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.wroteHeader {
		return
	}
	sr.status = code
	sr.wroteHeader = true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wroteHeader {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zap.ErrorLevel
	case status >= 400:
		return zap.WarnLevel
	default:
		return zap.InfoLevel
	}
}

// Logging writes an HTTP_IN and an HTTP_OUT line per request. The OUT line
// carries the matched chi route and, once Authenticate ran, the user id.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info, r := ensureInfo(r)

		logger.HttpRequestInfo(r, "HTTP_IN: Request started",
			zap.String("request_id", info.id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("request_id", info.id),
			zap.Int("status", rec.status),
			zap.Int("bytes_written", rec.size),
			zap.Duration("ms", time.Since(start)),
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			fields = append(fields, zap.String("route", rctx.RoutePattern()))
		}
		if info.userID != uuid.Nil {
			fields = append(fields, zap.String("user_id", info.userID.String()))
		}
		logger.Log(levelFor(rec.status), "HTTP_OUT: Request finished", fields...)
	})
}
