package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kudos/internal/kudo/models"
	id "kudos/pkg/domain"
	"kudos/pkg/platform/tx"
)

// PostgresStore persists the ledger in the kudos table. Calls made inside
// RunForSender join its transaction through the context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// RunForSender opens a transaction holding a sender-scoped advisory lock for
// its whole lifetime. fn's error rolls the transaction back.
func (s *PostgresStore) RunForSender(ctx context.Context, sender id.UserID, fn func(ctx context.Context) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if _, err = sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, sender.String()); err != nil {
		return fmt.Errorf("lock sender: %w", err)
	}

	if err = fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit ledger transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, k *models.Kudo) error {
	_, err := tx.Or(ctx, s.db).ExecContext(ctx,
		`INSERT INTO kudos (id, sender_id, receiver_id, message, created_at) VALUES ($1, $2, $3, $4, $5)`,
		k.ID, k.SenderID, k.ReceiverID, k.Message, k.CreatedAt)
	if err != nil {
		return fmt.Errorf("append kudo: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountSentSince(ctx context.Context, sender id.UserID, since time.Time) (int, error) {
	var n int
	err := tx.Or(ctx, s.db).QueryRowContext(ctx,
		`SELECT count(*) FROM kudos WHERE sender_id = $1 AND created_at >= $2`,
		sender, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sent kudos: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListReceived(ctx context.Context, receiver id.UserID) ([]*models.Kudo, error) {
	rows, err := tx.Or(ctx, s.db).QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, message, created_at
		FROM kudos
		WHERE receiver_id = $1
		ORDER BY created_at DESC, seq DESC`, receiver)
	if err != nil {
		return nil, fmt.Errorf("list received kudos: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Kudo, 0)
	for rows.Next() {
		var k models.Kudo
		if err := rows.Scan(&k.ID, &k.SenderID, &k.ReceiverID, &k.Message, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan kudo: %w", err)
		}
		out = append(out, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kudos: %w", err)
	}
	return out, nil
}
