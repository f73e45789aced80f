package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"kudos/internal/directory/models"
	id "kudos/pkg/domain"
	"kudos/pkg/platform/sentinel"
)

// InMemory is a directory held in process memory. Lookups return copies.
type InMemory struct {
	mu         sync.RWMutex
	orgs       map[id.OrganizationID]*models.Organization
	users      map[id.UserID]*models.User
	byUsername map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		orgs:       make(map[id.OrganizationID]*models.Organization),
		users:      make(map[id.UserID]*models.User),
		byUsername: make(map[string]id.UserID),
	}
}

// AddOrganization registers an organization. Names are unique case-insensitively.
func (s *InMemory) AddOrganization(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[org.ID]; ok {
		return fmt.Errorf("organization %s: %w", org.ID, sentinel.ErrConflict)
	}
	for _, existing := range s.orgs {
		if strings.EqualFold(existing.Name, org.Name) {
			return fmt.Errorf("organization name %q: %w", org.Name, sentinel.ErrConflict)
		}
	}
	cp := *org
	s.orgs[org.ID] = &cp
	return nil
}

// AddUser registers a user under an existing organization.
func (s *InMemory) AddUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[user.OrganizationID]; !ok {
		return fmt.Errorf("organization %s: %w", user.OrganizationID, sentinel.ErrNotFound)
	}
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrConflict)
	}
	key := strings.ToLower(user.Username)
	if _, ok := s.byUsername[key]; ok {
		return fmt.Errorf("username %q: %w", user.Username, sentinel.ErrConflict)
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("email %q: %w", user.Email, sentinel.ErrConflict)
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	s.byUsername[key] = user.ID
	return nil
}

func (s *InMemory) FindUserByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uid, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.users[uid]
	return &cp, nil
}

func (s *InMemory) FindOrganizationByID(_ context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orgs[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *InMemory) ListUsersByOrganization(_ context.Context, orgID id.OrganizationID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0)
	for _, u := range s.users {
		if u.OrganizationID == orgID {
			cp := *u
			users = append(users, &cp)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *InMemory) ListOrganizations(_ context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgs := make([]*models.Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		cp := *o
		orgs = append(orgs, &cp)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].Name < orgs[j].Name })
	return orgs, nil
}
