package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	dirmodels "kudos/internal/directory/models"
	"kudos/internal/identity"
	"kudos/internal/kudo/models"
	id "kudos/pkg/domain"
	dErrors "kudos/pkg/domain-errors"
	"kudos/pkg/platform/sentinel"
)

// CurrentUser returns the caller's profile with their remaining weekly quota.
func (s *Service) CurrentUser(ctx context.Context, caller identity.Resolved) (*models.UserView, error) {
	if !caller.Provided {
		return nil, dErrors.New(dErrors.CodeMissingIdentity, "X-User-ID header is required")
	}
	if !caller.OK() {
		return nil, dErrors.New(dErrors.CodeUnknownUser, "user does not exist")
	}
	return s.UserView(ctx, caller.User.ID)
}

// UserView is CurrentUser keyed by id.
func (s *Service) UserView(ctx context.Context, userID id.UserID) (*models.UserView, error) {
	user, err := s.directory.FindUserByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, dErrors.CodeUnknownUser, "user does not exist")
	}

	var (
		org       *dirmodels.Organization
		remaining int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := s.directory.FindOrganizationByID(gctx, user.OrganizationID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
		}
		org = o
		return nil
	})
	g.Go(func() error {
		n, err := s.quota.Remaining(gctx, user.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute remaining kudos")
		}
		remaining = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.UserView{
		User:             user,
		OrganizationName: org.Name,
		RemainingKudos:   remaining,
	}, nil
}

// UsersInOrganization lists an organization's users ordered by username.
func (s *Service) UsersInOrganization(ctx context.Context, orgID id.OrganizationID) ([]*models.UserSummary, error) {
	org, err := s.directory.FindOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, lookupErr(err, dErrors.CodeUnknownOrganization, "organization does not exist")
	}
	return s.summaries(ctx, org, nil)
}

// Colleagues lists the caller's organization without the caller. An absent or
// unresolved identity yields an empty list.
func (s *Service) Colleagues(ctx context.Context, caller identity.Resolved) ([]*models.UserSummary, error) {
	if !caller.OK() {
		return []*models.UserSummary{}, nil
	}
	org, err := s.directory.FindOrganizationByID(ctx, caller.User.OrganizationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	exclude := caller.User.ID
	return s.summaries(ctx, org, &exclude)
}

func (s *Service) summaries(ctx context.Context, org *dirmodels.Organization, exclude *id.UserID) ([]*models.UserSummary, error) {
	users, err := s.directory.ListUsersByOrganization(ctx, org.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	out := make([]*models.UserSummary, 0, len(users))
	for _, u := range users {
		if exclude != nil && u.ID == *exclude {
			continue
		}
		out = append(out, &models.UserSummary{ID: u.ID, Username: u.Username, OrganizationName: org.Name})
	}
	return out, nil
}

// Organizations lists all organizations ordered by name.
func (s *Service) Organizations(ctx context.Context) ([]*dirmodels.Organization, error) {
	orgs, err := s.directory.ListOrganizations(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	return orgs, nil
}

// ReceivedKudos lists the caller's received kudos, newest first. An absent or
// unresolved identity yields an empty list.
func (s *Service) ReceivedKudos(ctx context.Context, caller identity.Resolved) ([]*models.KudoView, error) {
	if !caller.OK() {
		return []*models.KudoView{}, nil
	}
	return s.KudosReceivedBy(ctx, caller.User.ID)
}

// KudosReceivedBy lists kudos received by userID, newest first, with usernames.
func (s *Service) KudosReceivedBy(ctx context.Context, userID id.UserID) ([]*models.KudoView, error) {
	kudos, err := s.ledger.ListReceived(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list received kudos")
	}

	usernames := make(map[id.UserID]string)
	username := func(uid id.UserID) (string, error) {
		if name, ok := usernames[uid]; ok {
			return name, nil
		}
		u, err := s.directory.FindUserByID(ctx, uid)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				usernames[uid] = ""
				return "", nil
			}
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve username")
		}
		usernames[uid] = u.Username
		return u.Username, nil
	}

	out := make([]*models.KudoView, 0, len(kudos))
	for _, k := range kudos {
		sender, err := username(k.SenderID)
		if err != nil {
			return nil, err
		}
		receiver, err := username(k.ReceiverID)
		if err != nil {
			return nil, err
		}
		out = append(out, &models.KudoView{Kudo: *k, SenderUsername: sender, ReceiverUsername: receiver})
	}
	return out, nil
}
