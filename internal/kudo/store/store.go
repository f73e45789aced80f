// Package store is the kudo ledger: an append-only record of issued kudos.
package store

import (
	"context"
	"time"

	"kudos/internal/kudo/models"
	id "kudos/pkg/domain"
)

// Ledger is implemented by every backend.
type Ledger interface {
	// Append records a kudo. The ledger never updates or deletes.
	Append(ctx context.Context, k *models.Kudo) error
	// CountSentSince counts kudos sent by sender with CreatedAt >= since.
	CountSentSince(ctx context.Context, sender id.UserID, since time.Time) (int, error)
	// ListReceived returns kudos received by receiver, newest first.
	ListReceived(ctx context.Context, receiver id.UserID) ([]*models.Kudo, error)
	// RunForSender runs fn while holding sender's exclusive scope. Count and Append
	// calls made with the ctx passed to fn are serialized against other scopes
	// for the same sender.
	RunForSender(ctx context.Context, sender id.UserID, fn func(ctx context.Context) error) error
}

var (
	_ Ledger = (*InMemory)(nil)
	_ Ledger = (*PostgresStore)(nil)
)
