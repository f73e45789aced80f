package tx

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOr(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("falls back to the pool", func(t *testing.T) {
		assert.Same(t, db, Or(context.Background(), db))
	})

	t.Run("prefers the transaction in context", func(t *testing.T) {
		mock.ExpectBegin()
		sqlTx, err := db.Begin()
		require.NoError(t, err)

		ctx := WithTx(context.Background(), sqlTx)
		assert.Same(t, sqlTx, Or(ctx, db))

		mock.ExpectRollback()
		require.NoError(t, sqlTx.Rollback())
	})

	t.Run("nil transaction leaves context untouched", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, WithTx(ctx, nil))
		_, ok := From(ctx)
		assert.False(t, ok)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
