// Package quota computes how many kudos a user may still send this week.
package quota

import (
	"context"
	"time"

	id "kudos/pkg/domain"
)

// DefaultWeeklyLimit is the number of kudos a user may send per week.
const DefaultWeeklyLimit = 3

// Clock returns the current time.
type Clock func() time.Time

// Counter counts kudos a sender issued at or after since.
type Counter interface {
	CountSentSince(ctx context.Context, sender id.UserID, since time.Time) (int, error)
}

// Calculator derives remaining quota from the ledger. Weeks start Monday 00:00
// in the calculator's location.
type Calculator struct {
	counter  Counter
	limit    int
	location *time.Location
	clock    Clock
}

type Option func(*Calculator)

func WithLimit(limit int) Option {
	return func(c *Calculator) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		if loc != nil {
			c.location = loc
		}
	}
}

func WithClock(clock Clock) Option {
	return func(c *Calculator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func New(counter Counter, opts ...Option) *Calculator {
	c := &Calculator{
		counter:  counter,
		limit:    DefaultWeeklyLimit,
		location: time.UTC,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Limit() int { return c.limit }

func (c *Calculator) Now() time.Time { return c.clock() }

// WeekStart returns the most recent Monday 00:00 at or before t, in the
// calculator's location.
func (c *Calculator) WeekStart(t time.Time) time.Time {
	t = t.In(c.location)
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-daysSinceMonday, 0, 0, 0, 0, c.location)
}

// Remaining is RemainingAsOf at the calculator's current time.
func (c *Calculator) Remaining(ctx context.Context, userID id.UserID) (int, error) {
	return c.RemainingAsOf(ctx, userID, c.clock())
}

// RemainingAsOf returns max(0, limit - kudos sent since the start of asOf's week).
// Kudos dated after asOf still count.
func (c *Calculator) RemainingAsOf(ctx context.Context, userID id.UserID, asOf time.Time) (int, error) {
	sent, err := c.counter.CountSentSince(ctx, userID, c.WeekStart(asOf))
	if err != nil {
		return 0, err
	}
	return max(0, c.limit-sent), nil
}
