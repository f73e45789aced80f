//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kudos/internal/directory/models"
	"kudos/internal/directory/store"
	id "kudos/pkg/domain"
	"kudos/pkg/platform/sentinel"
	"kudos/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "kudos", "users", "organizations"))
}

func (s *PostgresStoreSuite) TestRoundTripAndOrdering() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	globex := &models.Organization{ID: id.NewOrganizationID(), Name: "Globex", CreatedAt: now}
	acme := &models.Organization{ID: id.NewOrganizationID(), Name: "Acme", CreatedAt: now}
	s.Require().NoError(s.store.AddOrganization(ctx, globex))
	s.Require().NoError(s.store.AddOrganization(ctx, acme))

	for _, name := range []string{"bob", "alice"} {
		s.Require().NoError(s.store.AddUser(ctx, &models.User{
			ID: id.NewUserID(), Username: name, Email: name + "@acme.test", OrganizationID: acme.ID, CreatedAt: now,
		}))
	}

	orgs, err := s.store.ListOrganizations(ctx)
	s.Require().NoError(err)
	s.Require().Len(orgs, 2)
	s.Equal("Acme", orgs[0].Name)

	users, err := s.store.ListUsersByOrganization(ctx, acme.ID)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("alice", users[0].Username)

	found, err := s.store.FindUserByUsername(ctx, "BOB")
	s.Require().NoError(err)
	s.Equal(acme.ID, found.OrganizationID)
	s.True(now.Equal(found.CreatedAt))

	org, err := s.store.FindOrganizationByID(ctx, acme.ID)
	s.Require().NoError(err)
	s.Equal("Acme", org.Name)
}

func (s *PostgresStoreSuite) TestNotFoundAndConflict() {
	ctx := context.Background()

	_, err := s.store.FindUserByID(ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindOrganizationByID(ctx, id.NewOrganizationID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	org := &models.Organization{ID: id.NewOrganizationID(), Name: "Acme", CreatedAt: time.Now()}
	s.Require().NoError(s.store.AddOrganization(ctx, org))
	err = s.store.AddOrganization(ctx, &models.Organization{ID: id.NewOrganizationID(), Name: "Acme", CreatedAt: time.Now()})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUniquenessIgnoresCase() {
	ctx := context.Background()
	now := time.Now().UTC()

	acme := &models.Organization{ID: id.NewOrganizationID(), Name: "Acme", CreatedAt: now}
	s.Require().NoError(s.store.AddOrganization(ctx, acme))

	err := s.store.AddOrganization(ctx, &models.Organization{ID: id.NewOrganizationID(), Name: "ACME", CreatedAt: now})
	s.ErrorIs(err, sentinel.ErrConflict)

	s.Require().NoError(s.store.AddUser(ctx, &models.User{
		ID: id.NewUserID(), Username: "bob", Email: "bob@acme.test", OrganizationID: acme.ID, CreatedAt: now,
	}))

	err = s.store.AddUser(ctx, &models.User{
		ID: id.NewUserID(), Username: "Bob", Email: "other@acme.test", OrganizationID: acme.ID, CreatedAt: now,
	})
	s.ErrorIs(err, sentinel.ErrConflict)

	err = s.store.AddUser(ctx, &models.User{
		ID: id.NewUserID(), Username: "robert", Email: "BOB@acme.test", OrganizationID: acme.ID, CreatedAt: now,
	})
	s.ErrorIs(err, sentinel.ErrConflict)
}
