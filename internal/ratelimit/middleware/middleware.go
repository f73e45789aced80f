// Package middleware throttles requests per caller with a sliding window.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"kudos/internal/identity"
	"kudos/internal/ratelimit/metrics"
	"kudos/internal/ratelimit/models"
	"kudos/internal/ratelimit/store"
	"kudos/pkg/platform/httputil"
	"kudos/pkg/requestcontext"
)

// Window is the counter backing the limiter.
type Window = store.Window

type Middleware struct {
	store    Window
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns the limiter into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

func New(counter Window, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  counter,
		limit:  limit,
		window: window,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Throttle limits requests per resolved caller, falling back to the client IP.
// Store failures let the request through.
func (m *Middleware) Throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := Key(ctx)

		result, err := m.store.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"error", err,
				"key", key,
				"request_id", requestcontext.RequestID(ctx),
			)
			if m.metrics != nil {
				m.metrics.IncrementStoreErrors()
			}
			next.ServeHTTP(w, r)
			return
		}

		addHeaders(w, result)
		if !result.Allowed {
			if m.metrics != nil {
				m.metrics.IncrementRejected()
			}
			m.logger.InfoContext(ctx, "request throttled",
				"key", key,
				"retry_after", result.RetryAfter,
				"request_id", requestcontext.RequestID(ctx),
			)
			writeExceeded(w, result)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Key is the throttling key for the request in ctx.
func Key(ctx context.Context) string {
	if caller := identity.FromContext(ctx); caller.OK() {
		return "user:" + caller.User.ID.String()
	}
	return "ip:" + requestcontext.ClientIP(ctx)
}

func addHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:            "rate_limit_exceeded",
		ErrorDescription: "too many requests, try again later",
		RetryAfter:       result.RetryAfter,
	})
}
