// Package httpapi assembles the public HTTP surface.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kudos/internal/identity"
	"kudos/internal/kudo/handler"
	"kudos/internal/platform/metrics"
	"kudos/pkg/platform/httputil"
	"kudos/pkg/platform/middleware/metadata"
	"kudos/pkg/requestcontext"
)

// Check is a named readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Dependencies are the components the router mounts.
type Dependencies struct {
	Kudos     *handler.Handler
	Directory identity.UserFinder
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Throttle  func(http.Handler) http.Handler // wraps POST /kudos; nil means unthrottled
	Readiness []Check
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestIDBridge)
	r.Use(middleware.Recoverer)
	r.Use(metadata.ClientMetadata)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(deps.Readiness, deps.Logger))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(deps.Directory, deps.Logger))
		deps.Kudos.Register(r)

		issue := http.Handler(http.HandlerFunc(deps.Kudos.HandleIssueKudo))
		if deps.Throttle != nil {
			issue = deps.Throttle(issue)
		}
		r.Method(http.MethodPost, "/kudos", issue)
	})
	return r
}

// requestIDBridge copies chi's request id into requestcontext.
func requestIDBridge(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func readiness(checks []Check, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed",
					"check", c.Name,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				results[c.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[c.Name] = "ok"
		}
		httputil.WriteJSON(w, status, results)
	}
}
