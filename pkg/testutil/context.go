package testutil

import (
	"context"
	"net/http"
)

// UserHeader is the request header that carries the caller's identity.
const UserHeader = "X-User-ID"

// AsUser sets the identity header on the request.
func AsUser(req *http.Request, userID string) *http.Request {
	req.Header.Set(UserHeader, userID)
	return req
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
