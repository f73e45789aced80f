// Package store holds sliding-window counters for request throttling.
package store

import (
	"context"
	"time"

	"kudos/internal/ratelimit/models"
)

// Window admits at most limit events per key within any trailing window.
type Window interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}
