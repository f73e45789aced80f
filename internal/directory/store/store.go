// Package store provides directory lookups backed by memory or PostgreSQL.
// Stores return sentinel.ErrNotFound for missing records; callers translate it.
package store

import (
	"context"

	"kudos/internal/directory/models"
	id "kudos/pkg/domain"
)

// Directory is the read side every backend implements.
type Directory interface {
	FindUserByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindOrganizationByID(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error)
	// ListUsersByOrganization returns users ordered by username.
	ListUsersByOrganization(ctx context.Context, orgID id.OrganizationID) ([]*models.User, error)
	// ListOrganizations returns all organizations ordered by name.
	ListOrganizations(ctx context.Context) ([]*models.Organization, error)
}

var (
	_ Directory = (*InMemory)(nil)
	_ Directory = (*PostgresStore)(nil)
)
