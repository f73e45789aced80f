// Package domain holds typed identifiers shared across bounded contexts.
//
// Typed IDs keep a UserID from being passed where an OrganizationID is expected.
// Construct them from external input with the Parse* functions, which reject
// empty, malformed, and nil UUIDs.
package domain

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"

	dErrors "kudos/pkg/domain-errors"
)

type (
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	KudoID         uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

func scanUUID(dst *uuid.UUID, src any) error {
	var u uuid.UUID
	if err := u.Scan(src); err != nil {
		return fmt.Errorf("scan id: %w", err)
	}
	*dst = u
	return nil
}

// ParseUserID parses a user ID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

// ParseOrganizationID parses an organization ID from external input.
func ParseOrganizationID(s string) (OrganizationID, error) {
	u, err := parseUUID("organization id", s)
	return OrganizationID(u), err
}

// ParseKudoID parses a kudo ID from external input.
func ParseKudoID(s string) (KudoID, error) {
	u, err := parseUUID("kudo id", s)
	return KudoID(u), err
}

func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewOrganizationID() OrganizationID { return OrganizationID(uuid.New()) }
func NewKudoID() KudoID                 { return KudoID(uuid.New()) }

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
func (id UserID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }
func (id *UserID) Scan(src any) error         { return scanUUID((*uuid.UUID)(id), src) }

func (id OrganizationID) String() string { return uuid.UUID(id).String() }
func (id OrganizationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id OrganizationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *OrganizationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
func (id OrganizationID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }
func (id *OrganizationID) Scan(src any) error         { return scanUUID((*uuid.UUID)(id), src) }

func (id KudoID) String() string { return uuid.UUID(id).String() }
func (id KudoID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id KudoID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id *KudoID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
func (id KudoID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }
func (id *KudoID) Scan(src any) error         { return scanUUID((*uuid.UUID)(id), src) }
