package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
organizations:
  - name: Acme
    id: 7b0c3f4e-8f57-4c45-9a43-6c5a3c1b2a10
    users:
      - username: alice
        email: alice@acme.test
      - username: bob
        email: bob@acme.test
  - name: Globex
    users:
      - username: charlie
        email: charlie@globex.test
`

func TestLoadFixture(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	t.Run("seeds organizations and users", func(t *testing.T) {
		dir := NewInMemory()
		require.NoError(t, LoadFixture(ctx, dir, strings.NewReader(fixtureYAML), now))

		orgs, err := dir.ListOrganizations(ctx)
		require.NoError(t, err)
		require.Len(t, orgs, 2)
		assert.Equal(t, "7b0c3f4e-8f57-4c45-9a43-6c5a3c1b2a10", orgs[0].ID.String())

		alice, err := dir.FindUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, orgs[0].ID, alice.OrganizationID)
		assert.True(t, now.Equal(alice.CreatedAt))

		charlie, err := dir.FindUserByUsername(ctx, "charlie")
		require.NoError(t, err)
		assert.Equal(t, orgs[1].ID, charlie.OrganizationID)
	})

	t.Run("loading twice is idempotent", func(t *testing.T) {
		dir := NewInMemory()
		require.NoError(t, LoadFixture(ctx, dir, strings.NewReader(fixtureYAML), now))
		require.NoError(t, LoadFixture(ctx, dir, strings.NewReader(fixtureYAML), now))

		orgs, err := dir.ListOrganizations(ctx)
		require.NoError(t, err)
		assert.Len(t, orgs, 2)

		users, err := dir.ListUsersByOrganization(ctx, orgs[1].ID)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		err := LoadFixture(ctx, NewInMemory(), strings.NewReader("organisations: []\n"), now)
		assert.Error(t, err)
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		bad := "organizations:\n  - name: Acme\n    id: not-a-uuid\n"
		err := LoadFixture(ctx, NewInMemory(), strings.NewReader(bad), now)
		assert.Error(t, err)
	})

	t.Run("derives missing username and normalizes email", func(t *testing.T) {
		dir := NewInMemory()
		doc := "organizations:\n  - name: Acme\n    users:\n      - email: Dana.Scully+work@Acme.test\n"
		require.NoError(t, LoadFixture(ctx, dir, strings.NewReader(doc), now))

		dana, err := dir.FindUserByUsername(ctx, "dana.scully")
		require.NoError(t, err)
		assert.Equal(t, "dana.scully+work@acme.test", dana.Email)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		bad := "organizations:\n  - name: Acme\n    users:\n      - username: alice\n        email: alice\n"
		err := LoadFixture(ctx, NewInMemory(), strings.NewReader(bad), now)
		assert.Error(t, err)
	})

	t.Run("requires email", func(t *testing.T) {
		bad := "organizations:\n  - name: Acme\n    users:\n      - username: alice\n"
		err := LoadFixture(ctx, NewInMemory(), strings.NewReader(bad), now)
		assert.Error(t, err)
	})

	t.Run("empty document seeds nothing", func(t *testing.T) {
		dir := NewInMemory()
		require.NoError(t, LoadFixture(ctx, dir, strings.NewReader(""), now))
		orgs, err := dir.ListOrganizations(ctx)
		require.NoError(t, err)
		assert.Empty(t, orgs)
	})
}
