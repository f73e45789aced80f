package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dirmodels "kudos/internal/directory/models"
	dirstore "kudos/internal/directory/store"
	"kudos/internal/kudo/handler"
	"kudos/internal/kudo/service"
	kudostore "kudos/internal/kudo/store"
	"kudos/internal/platform/metrics"
	rlmiddleware "kudos/internal/ratelimit/middleware"
	rlstore "kudos/internal/ratelimit/store"
	id "kudos/pkg/domain"
	"kudos/pkg/testutil"
)

type fixture struct {
	router     http.Handler
	alice, bob *dirmodels.User
}

func newFixture(t *testing.T, checks ...Check) fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Now()

	dir := dirstore.NewInMemory()
	org := &dirmodels.Organization{ID: id.NewOrganizationID(), Name: "Acme", CreatedAt: now}
	require.NoError(t, dir.AddOrganization(ctx, org))
	alice := &dirmodels.User{ID: id.NewUserID(), Username: "alice", Email: "alice@acme.test", OrganizationID: org.ID, CreatedAt: now}
	bob := &dirmodels.User{ID: id.NewUserID(), Username: "bob", Email: "bob@acme.test", OrganizationID: org.ID, CreatedAt: now}
	require.NoError(t, dir.AddUser(ctx, alice))
	require.NoError(t, dir.AddUser(ctx, bob))

	svc, err := service.New(dir, kudostore.NewInMemory(), service.WithLogger(logger))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	throttle := rlmiddleware.New(rlstore.NewInMemory(), 2, time.Minute, logger)

	router := NewRouter(Dependencies{
		Kudos:     handler.New(svc, dir, logger),
		Directory: dir,
		Logger:    logger,
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Throttle:  throttle.Throttle,
		Readiness: checks,
	})
	return fixture{router: router, alice: alice, bob: bob}
}

func TestRouter(t *testing.T) {
	t.Run("healthz", func(t *testing.T) {
		f := newFixture(t)
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("readyz reports failing checks", func(t *testing.T) {
		f := newFixture(t,
			Check{Name: "postgres", Ping: func(context.Context) error { return nil }},
			Check{Name: "redis", Ping: func(context.Context) error { return errors.New("down") }},
		)
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		body := testutil.UnmarshalResponse[map[string]string](t, rr)
		assert.Equal(t, "ok", body["postgres"])
		assert.Equal(t, "unavailable", body["redis"])
	})

	t.Run("organization listing works without identity", func(t *testing.T) {
		f := newFixture(t)
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/organizations"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONArrayLen(t, rr, 1)
	})

	t.Run("issuance is throttled per caller", func(t *testing.T) {
		f := newFixture(t)
		send := func() int {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/kudos", map[string]string{
				"receiver": f.bob.ID.String(),
				"message":  "thanks",
			})
			return testutil.DoRequest(f.router, testutil.AsUser(req, f.alice.ID.String())).Code
		}
		assert.Equal(t, http.StatusCreated, send())
		assert.Equal(t, http.StatusCreated, send())
		assert.Equal(t, http.StatusTooManyRequests, send())
	})

	t.Run("metrics are labelled by route pattern", func(t *testing.T) {
		f := newFixture(t)
		testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/organizations"))
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Contains(t, rr.Body.String(), `route="/organizations"`)
	})
}
