// Package identity maps the X-User-ID request header to a directory user.
// The header is trusted; nothing here authenticates the caller.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"kudos/internal/directory/models"
	id "kudos/pkg/domain"
	dErrors "kudos/pkg/domain-errors"
	"kudos/pkg/platform/httputil"
	"kudos/pkg/platform/sentinel"
	"kudos/pkg/requestcontext"
)

// Header carries the caller's user id.
const Header = "X-User-ID"

// Resolved is the outcome of identity resolution for one request.
//
//   - Provided=false: no header was sent.
//   - Provided=true, User=nil: header sent but malformed or unknown.
//   - User set: the caller.
type Resolved struct {
	Provided bool
	User     *models.User
}

// Anonymous is the identity of a request without the header.
var Anonymous = Resolved{}

// Of returns a resolved identity for user.
func Of(user *models.User) Resolved {
	return Resolved{Provided: true, User: user}
}

// Unresolved is an identity that was supplied but matched no user.
func Unresolved() Resolved {
	return Resolved{Provided: true}
}

// OK reports whether the identity resolved to a user.
func (r Resolved) OK() bool {
	return r.User != nil
}

// UserFinder is the directory lookup the resolver needs.
type UserFinder interface {
	FindUserByID(ctx context.Context, userID id.UserID) (*models.User, error)
}

// Resolve interprets a raw header value. Only infrastructure failures are errors.
func Resolve(ctx context.Context, finder UserFinder, raw string) (Resolved, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Anonymous, nil
	}
	userID, err := id.ParseUserID(raw)
	if err != nil {
		return Unresolved(), nil
	}
	user, err := finder.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Unresolved(), nil
		}
		return Resolved{}, err
	}
	return Of(user), nil
}

type ctxKey struct{}

// WithResolved stores r in ctx.
func WithResolved(ctx context.Context, r Resolved) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the identity resolved by Middleware, or Anonymous.
func FromContext(ctx context.Context) Resolved {
	if r, ok := ctx.Value(ctxKey{}).(Resolved); ok {
		return r
	}
	return Anonymous
}

// Middleware resolves the header once per request and stores the result in the context.
func Middleware(finder UserFinder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			resolved, err := Resolve(ctx, finder, r.Header.Get(Header))
			if err != nil {
				logger.ErrorContext(ctx, "failed to resolve identity",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve identity"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithResolved(ctx, resolved)))
		})
	}
}
