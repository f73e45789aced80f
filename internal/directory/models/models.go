// Package models holds the read-only directory records: organizations and their users.
package models

import (
	"time"

	id "kudos/pkg/domain"
)

// Organization groups users. Names are unique; records are immutable.
type Organization struct {
	ID        id.OrganizationID
	Name      string
	CreatedAt time.Time
}

// User belongs to exactly one organization for its whole lifetime.
type User struct {
	ID             id.UserID
	Username       string
	Email          string
	OrganizationID id.OrganizationID
	CreatedAt      time.Time
}

// SameOrganization reports whether u and other share an organization.
func (u *User) SameOrganization(other *User) bool {
	return u.OrganizationID == other.OrganizationID
}
