package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dirmodels "kudos/internal/directory/models"
	"kudos/internal/identity"
	"kudos/internal/kudo/models"
	id "kudos/pkg/domain"
	dErrors "kudos/pkg/domain-errors"
	"kudos/pkg/platform/httputil"
	"kudos/pkg/requestcontext"
)

// Service is the kudo core as the HTTP layer sees it.
type Service interface {
	IssueAs(ctx context.Context, caller identity.Resolved, receiver, message string) (*models.Kudo, error)
	CurrentUser(ctx context.Context, caller identity.Resolved) (*models.UserView, error)
	Colleagues(ctx context.Context, caller identity.Resolved) ([]*models.UserSummary, error)
	Organizations(ctx context.Context) ([]*dirmodels.Organization, error)
	UsersInOrganization(ctx context.Context, orgID id.OrganizationID) ([]*models.UserSummary, error)
	ReceivedKudos(ctx context.Context, caller identity.Resolved) ([]*models.KudoView, error)
}

// UsernameLookup resolves usernames for the issue response.
type UsernameLookup interface {
	FindUserByID(ctx context.Context, userID id.UserID) (*dirmodels.User, error)
}

// Handler exposes the kudo service over HTTP. Routes expect identity.Middleware upstream.
type Handler struct {
	service   Service
	usernames UsernameLookup
	logger    *slog.Logger
}

func New(service Service, usernames UsernameLookup, logger *slog.Logger) *Handler {
	return &Handler{service: service, usernames: usernames, logger: logger}
}

// Register mounts the read routes. POST /kudos is mounted separately through
// HandleIssueKudo so callers can wrap it with throttling.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users/me", h.HandleCurrentUser)
	r.Get("/users", h.HandleColleagues)
	r.Get("/organizations", h.HandleOrganizations)
	r.Get("/organizations/{id}/users", h.HandleOrganizationUsers)
	r.Get("/kudos/received", h.HandleReceivedKudos)
}

// HandleCurrentUser handles GET /users/me.
func (h *Handler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.CurrentUser(ctx, identity.FromContext(ctx))
	if err != nil {
		h.fail(ctx, w, "current user lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCurrentUserResponse(view))
}

// HandleColleagues handles GET /users.
func (h *Handler) HandleColleagues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.service.Colleagues(ctx, identity.FromContext(ctx))
	if err != nil {
		h.fail(ctx, w, "colleague listing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserListResponse(users))
}

// HandleOrganizations handles GET /organizations.
func (h *Handler) HandleOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgs, err := h.service.Organizations(ctx)
	if err != nil {
		h.fail(ctx, w, "organization listing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrganizationListResponse(orgs))
}

// HandleOrganizationUsers handles GET /organizations/{id}/users.
func (h *Handler) HandleOrganizationUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, err := id.ParseOrganizationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnknownOrganization, "organization does not exist"))
		return
	}
	users, err := h.service.UsersInOrganization(ctx, orgID)
	if err != nil {
		h.fail(ctx, w, "organization user listing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserListResponse(users))
}

// HandleReceivedKudos handles GET /kudos/received.
func (h *Handler) HandleReceivedKudos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kudos, err := h.service.ReceivedKudos(ctx, identity.FromContext(ctx))
	if err != nil {
		h.fail(ctx, w, "received kudos listing failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toKudoListResponse(kudos))
}

// HandleIssueKudo handles POST /kudos.
func (h *Handler) HandleIssueKudo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller := identity.FromContext(ctx)

	if !caller.Provided {
		httputil.WriteError(w, dErrors.New(dErrors.CodeMissingIdentity, "X-User-ID header is required"))
		return
	}
	if !caller.OK() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnknownSender, "sender does not exist"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[IssueKudoRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	kudo, err := h.service.IssueAs(ctx, caller, req.Receiver, req.Message)
	if err != nil {
		h.fail(ctx, w, "kudo issuance rejected", err)
		return
	}

	resp := toKudoResponse(&models.KudoView{Kudo: *kudo, SenderUsername: caller.User.Username})
	if receiver, err := h.usernames.FindUserByID(ctx, kudo.ReceiverID); err == nil {
		resp.ReceiverUsername = receiver.Username
	} else {
		h.logger.WarnContext(ctx, "failed to resolve receiver username",
			"request_id", requestID,
			"kudo_id", kudo.ID,
			"error", err,
		)
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelInfo
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"client_ip", requestcontext.ClientIP(ctx),
		"user_agent", requestcontext.UserAgent(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
