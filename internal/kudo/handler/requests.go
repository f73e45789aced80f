package handler

import (
	"strings"

	dErrors "kudos/pkg/domain-errors"
)

// IssueKudoRequest is the body of POST /kudos. Receiver and message are checked
// by the service in its fixed order, so only shape is validated here.
type IssueKudoRequest struct {
	Receiver string `json:"receiver"`
	Message  string `json:"message"`
}

// Validate implements httputil.Validatable.
func (r *IssueKudoRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Receiver = strings.TrimSpace(r.Receiver)
	return nil
}
