// Package models holds kudo records and the read views assembled around them.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	dirmodels "kudos/internal/directory/models"
	id "kudos/pkg/domain"
	dErrors "kudos/pkg/domain-errors"
)

// DefaultMaxMessageLength bounds kudo messages, in runes.
const DefaultMaxMessageLength = 1000

// Kudo is an immutable recognition from one user to a colleague.
//
// Invariants:
//   - SenderID != ReceiverID
//   - sender and receiver share an organization at issuance
//   - Message is trimmed and non-empty
type Kudo struct {
	ID         id.KudoID
	SenderID   id.UserID
	ReceiverID id.UserID
	Message    string
	CreatedAt  time.Time
}

// NormalizeMessage trims msg and checks it is non-blank and at most maxLen runes.
func NormalizeMessage(msg string, maxLen int) (string, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", dErrors.New(dErrors.CodeInvalidMessage, "message must not be empty")
	}
	if utf8.RuneCountInString(msg) > maxLen {
		return "", dErrors.New(dErrors.CodeInvalidMessage, "message is too long")
	}
	return msg, nil
}

// KudoView is a kudo with both parties' usernames.
type KudoView struct {
	Kudo
	SenderUsername   string
	ReceiverUsername string
}

// UserView is the caller's own profile.
type UserView struct {
	User             *dirmodels.User
	OrganizationName string
	RemainingKudos   int
}

// UserSummary is a user as shown in listings.
type UserSummary struct {
	ID               id.UserID
	Username         string
	OrganizationName string
}
