//go:build integration

package store_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dirmodels "kudos/internal/directory/models"
	dirstore "kudos/internal/directory/store"
	"kudos/internal/kudo/models"
	"kudos/internal/kudo/service"
	"kudos/internal/kudo/store"
	id "kudos/pkg/domain"
	dErrors "kudos/pkg/domain-errors"
	"kudos/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	directory *dirstore.PostgresStore
	ledger    *store.PostgresStore

	acme       *dirmodels.Organization
	alice, bob *dirmodels.User
}

func TestPostgresLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.directory = dirstore.NewPostgres(s.postgres.DB)
	s.ledger = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresLedgerSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "kudos", "users", "organizations"))

	now := time.Now().UTC()
	s.acme = &dirmodels.Organization{ID: id.NewOrganizationID(), Name: "Acme", CreatedAt: now}
	s.Require().NoError(s.directory.AddOrganization(ctx, s.acme))
	s.alice = &dirmodels.User{ID: id.NewUserID(), Username: "alice", Email: "alice@acme.test", OrganizationID: s.acme.ID, CreatedAt: now}
	s.bob = &dirmodels.User{ID: id.NewUserID(), Username: "bob", Email: "bob@acme.test", OrganizationID: s.acme.ID, CreatedAt: now}
	s.Require().NoError(s.directory.AddUser(ctx, s.alice))
	s.Require().NoError(s.directory.AddUser(ctx, s.bob))
}

func (s *PostgresLedgerSuite) TestAppendCountAndList() {
	ctx := context.Background()
	t0 := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	for i, msg := range []string{"first", "second", "third"} {
		at := t0
		if i == 0 {
			at = t0.Add(-time.Hour)
		}
		s.Require().NoError(s.ledger.Append(ctx, &models.Kudo{
			ID: id.NewKudoID(), SenderID: s.alice.ID, ReceiverID: s.bob.ID, Message: msg, CreatedAt: at,
		}))
	}

	n, err := s.ledger.CountSentSince(ctx, s.alice.ID, t0)
	s.Require().NoError(err)
	s.Equal(2, n)

	got, err := s.ledger.ListReceived(ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal("third", got[0].Message)
	s.Equal("second", got[1].Message)
	s.Equal("first", got[2].Message)
}

// TestConcurrentIssueNeverExceedsQuota races issuance at remaining=1 through
// the advisory lock.
func (s *PostgresLedgerSuite) TestConcurrentIssueNeverExceedsQuota() {
	ctx := context.Background()
	svc, err := service.New(s.directory, s.ledger, service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)

	for range make([]struct{}, 2) {
		_, err := svc.Issue(ctx, s.alice.ID, s.bob.ID, "warmup")
		s.Require().NoError(err)
	}

	const goroutines = 30
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		exhausted atomic.Int32
	)
	for range make([]struct{}, goroutines) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Issue(ctx, s.alice.ID, s.bob.ID, "race")
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.CodeOf(err) == dErrors.CodeQuotaExhausted:
				exhausted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), exhausted.Load())

	remaining, err := svc.Quota().Remaining(ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Zero(remaining)
}
