package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks Directory,EventPublisher

import (
	"context"

	dirmodels "kudos/internal/directory/models"
	"kudos/internal/kudo/events"
	"kudos/internal/kudo/store"
	id "kudos/pkg/domain"
)

// Directory is the read-only user and organization lookup the service depends on.
type Directory interface {
	FindUserByID(ctx context.Context, userID id.UserID) (*dirmodels.User, error)
	FindOrganizationByID(ctx context.Context, orgID id.OrganizationID) (*dirmodels.Organization, error)
	ListUsersByOrganization(ctx context.Context, orgID id.OrganizationID) ([]*dirmodels.User, error)
	ListOrganizations(ctx context.Context) ([]*dirmodels.Organization, error)
}

// Ledger is the kudo store.
type Ledger = store.Ledger

// EventPublisher announces committed kudos.
type EventPublisher interface {
	PublishKudoIssued(ctx context.Context, e events.KudoIssued) error
}
