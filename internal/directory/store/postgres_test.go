package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos/internal/directory/models"
	id "kudos/pkg/domain"
	"kudos/pkg/platform/sentinel"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresFindUserByID(t *testing.T) {
	ctx := context.Background()
	userID := id.NewUserID()
	orgID := id.NewOrganizationID()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("scans the row", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
			WithArgs(userID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "organization_id", "created_at"}).
				AddRow(userID.String(), "alice", "alice@acme.test", orgID.String(), created))

		u, err := store.FindUserByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, u.ID)
		assert.Equal(t, orgID, u.OrganizationID)
		assert.Equal(t, "alice", u.Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps no rows to ErrNotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
			WithArgs(userID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "organization_id", "created_at"}))

		_, err := store.FindUserByID(ctx, userID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("wraps driver errors", func(t *testing.T) {
		store, mock := newMockStore(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).WillReturnError(boom)

		_, err := store.FindUserByID(ctx, userID)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresListOrganizations(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	a, b := id.NewOrganizationID(), id.NewOrganizationID()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, created_at FROM organizations ORDER BY name`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(a.String(), "Acme", now).
			AddRow(b.String(), "Globex", now))

	orgs, err := store.ListOrganizations(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, a, orgs[0].ID)
	assert.Equal(t, "Globex", orgs[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListUsersByOrganizationEmpty(t *testing.T) {
	store, mock := newMockStore(t)
	orgID := id.NewOrganizationID()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE organization_id = $1`)).
		WithArgs(orgID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "organization_id", "created_at"}))

	users, err := store.ListUsersByOrganization(context.Background(), orgID)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestPostgresAddUserConflict(t *testing.T) {
	store, mock := newMockStore(t)
	u := &models.User{ID: id.NewUserID(), Username: "alice", Email: "a@acme.test", OrganizationID: id.NewOrganizationID()}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := store.AddUser(context.Background(), u)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}
