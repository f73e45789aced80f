package handler

import (
	"time"

	dirmodels "kudos/internal/directory/models"
	"kudos/internal/kudo/models"
)

type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CurrentUserResponse struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Organization     string    `json:"organization"`
	OrganizationName string    `json:"organization_name"`
	RemainingKudos   int       `json:"remaining_kudos"`
	CreatedAt        time.Time `json:"created_at"`
}

type UserResponse struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	OrganizationName string `json:"organization_name"`
}

type KudoResponse struct {
	ID               string    `json:"id"`
	Sender           string    `json:"sender"`
	Receiver         string    `json:"receiver"`
	SenderUsername   string    `json:"sender_username"`
	ReceiverUsername string    `json:"receiver_username"`
	Message          string    `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
}

func toCurrentUserResponse(v *models.UserView) *CurrentUserResponse {
	return &CurrentUserResponse{
		ID:               v.User.ID.String(),
		Username:         v.User.Username,
		Email:            v.User.Email,
		Organization:     v.User.OrganizationID.String(),
		OrganizationName: v.OrganizationName,
		RemainingKudos:   v.RemainingKudos,
		CreatedAt:        v.User.CreatedAt,
	}
}

func toUserListResponse(users []*models.UserSummary) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserResponse{ID: u.ID.String(), Username: u.Username, OrganizationName: u.OrganizationName})
	}
	return out
}

func toOrganizationListResponse(orgs []*dirmodels.Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, OrganizationResponse{ID: o.ID.String(), Name: o.Name, CreatedAt: o.CreatedAt})
	}
	return out
}

func toKudoResponse(k *models.KudoView) *KudoResponse {
	return &KudoResponse{
		ID:               k.ID.String(),
		Sender:           k.SenderID.String(),
		Receiver:         k.ReceiverID.String(),
		SenderUsername:   k.SenderUsername,
		ReceiverUsername: k.ReceiverUsername,
		Message:          k.Message,
		CreatedAt:        k.CreatedAt,
	}
}

func toKudoListResponse(kudos []*models.KudoView) []*KudoResponse {
	out := make([]*KudoResponse, 0, len(kudos))
	for _, k := range kudos {
		out = append(out, toKudoResponse(k))
	}
	return out
}
