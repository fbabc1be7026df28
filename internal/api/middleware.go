package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"filmorate/internal/logging"
	"filmorate/internal/metrics"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// RequestIDHeader заголовок с id запроса.
const RequestIDHeader = "X-Request-ID"

// statusRecorder запоминает код ответа для логов и метрик.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// RequestIDMiddleware берет id из X-Request-ID или генерирует новый
// и кладет его в контекст и в заголовок ответа.
func (h *Handler) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RecoverMiddleware превращает панику обработчика в ответ 500.
func (h *Handler) RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.ErrorContext(r.Context(), "Panic while handling request",
					slog.Any("panic", rec), slog.String("stack", string(debug.Stack())))
				h.respondError(w, r, http.StatusInternalServerError, categoryInternal, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AccessLogMiddleware пишет одну строку лога на запрос.
func (h *Handler) AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.InfoContext(r.Context(), "HTTP request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}

// RateLimitMiddleware общий для всех клиентов token bucket.
// При исчерпании лимита отвечает 429.
func (h *Handler) RateLimitMiddleware(limiter *rate.Limiter, m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				if m != nil {
					m.APIRateLimited.Inc()
				}
				h.logger.WarnContext(r.Context(), "Rate limit exceeded", slog.String("path", r.URL.Path))
				w.Header().Set("Retry-After", "1")
				h.respondError(w, r, http.StatusTooManyRequests, categoryRateLimit, "rate limit exceeded, retry later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware учитывает запрос в Prometheus по шаблону маршрута,
// чтобы id в пути не раздували число рядов.
func (h *Handler) MetricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.TrackActiveRequest(true)
			defer m.TrackActiveRequest(false)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					endpoint = tpl
				}
			}
			m.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(rec.status), time.Since(start))
		})
	}
}
