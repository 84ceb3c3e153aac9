package middleware // import "github.com/Xunop/e-library/internal/middleware"

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/util"
)

const requestIDHeader = "X-Request-Id"

type Middleware struct {
	opts    *config.Options
	limiter *Limiter
}

func NewMiddleware(opts *config.Options) *Middleware {
	m := &Middleware{opts: opts}
	if opts.UploadRateLimit > 0 {
		m.limiter = NewLimiter(opts.UploadRateLimit, time.Minute, opts.UploadRateBurst)
	}
	return m
}

// Close releases the rate limiter.
func (m *Middleware) Close() {
	if m.limiter != nil {
		m.limiter.Close()
	}
}

func (m *Middleware) HandleCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := m.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Max-Age", "7200")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) allowedOrigin(origin string) string {
	if slices.Contains(m.opts.CORSAllowedOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.ContainsFunc(m.opts.CORSAllowedOrigins, func(o string) bool {
		return strings.EqualFold(strings.TrimRight(o, "/"), origin)
	}) {
		return origin
	}
	return ""
}

// RequestContext stores the client IP and a request id in the request context.
// A request id sent by the client is kept.
func (m *Middleware) RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = util.GenUUID()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := r.Context()
		ctx = context.WithValue(ctx, request.ClientIPContextKey, request.FindClientIP(r))
		ctx = context.WithValue(ctx, request.RequestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) LoggingRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		t1 := time.Now()
		defer func() {
			log.Debug("Incoming request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("proto", r.Proto),
				zap.String("client_ip", request.ClientIP(r)),
				zap.String("request_id", request.RequestID(r)),
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(t1)))
		}()

		next.ServeHTTP(recorder, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
