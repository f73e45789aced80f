package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kudos/internal/identity"
	"kudos/internal/kudo/events"
	"kudos/internal/kudo/models"
	id "kudos/pkg/domain"
	dErrors "kudos/pkg/domain-errors"
	"kudos/pkg/platform/sentinel"
	"kudos/pkg/requestcontext"
)

// IssueAs issues a kudo on behalf of the request identity. receiver is the raw
// id from the request body; a malformed id is reported as an unknown receiver.
func (s *Service) IssueAs(ctx context.Context, caller identity.Resolved, receiver, message string) (*models.Kudo, error) {
	if !caller.Provided {
		s.recordRejection(ctx, dErrors.CodeMissingIdentity)
		return nil, dErrors.New(dErrors.CodeMissingIdentity, "X-User-ID header is required")
	}
	if !caller.OK() {
		s.recordRejection(ctx, dErrors.CodeUnknownSender)
		return nil, dErrors.New(dErrors.CodeUnknownSender, "sender does not exist")
	}
	receiverID, err := id.ParseUserID(receiver)
	if err != nil {
		s.recordRejection(ctx, dErrors.CodeUnknownReceiver)
		return nil, dErrors.New(dErrors.CodeUnknownReceiver, "receiver does not exist")
	}
	return s.Issue(ctx, caller.User.ID, receiverID, message)
}

// Issue validates and records a kudo. Checks run in a fixed order and the first
// failure wins: sender exists, receiver exists, not self, same organization,
// quota left, message valid. The quota check and the append share one
// sender-scoped critical section, and CreatedAt is read inside it.
func (s *Service) Issue(ctx context.Context, senderID, receiverID id.UserID, message string) (*models.Kudo, error) {
	ctx, span := s.tracer.Start(ctx, "kudo.Issue", trace.WithAttributes(
		attribute.String("kudo.sender_id", senderID.String()),
		attribute.String("kudo.receiver_id", receiverID.String()),
	))
	defer span.End()
	start := time.Now()

	kudo, orgID, err := s.issue(ctx, senderID, receiverID, message)
	if err != nil {
		code := dErrors.CodeOf(err)
		span.SetAttributes(attribute.String("kudo.rejected", string(code)))
		if code == dErrors.CodeInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, "issue failed")
			s.logger.ErrorContext(ctx, "failed to issue kudo",
				"sender_id", senderID,
				"receiver_id", receiverID,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		s.recordRejection(ctx, code)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementIssued()
		s.metrics.ObserveIssueDuration(time.Since(start))
	}
	s.logger.InfoContext(ctx, "kudo_issued",
		"kudo_id", kudo.ID,
		"sender_id", kudo.SenderID,
		"receiver_id", kudo.ReceiverID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.publish(ctx, events.NewKudoIssued(kudo, orgID))
	return kudo, nil
}

func (s *Service) issue(ctx context.Context, senderID, receiverID id.UserID, message string) (*models.Kudo, id.OrganizationID, error) {
	sender, err := s.directory.FindUserByID(ctx, senderID)
	if err != nil {
		return nil, id.OrganizationID{}, lookupErr(err, dErrors.CodeUnknownSender, "sender does not exist")
	}
	receiver, err := s.directory.FindUserByID(ctx, receiverID)
	if err != nil {
		return nil, id.OrganizationID{}, lookupErr(err, dErrors.CodeUnknownReceiver, "receiver does not exist")
	}
	if sender.ID == receiver.ID {
		return nil, id.OrganizationID{}, dErrors.New(dErrors.CodeSelfKudoForbidden, "you cannot send kudos to yourself")
	}
	if !sender.SameOrganization(receiver) {
		return nil, id.OrganizationID{}, dErrors.New(dErrors.CodeCrossOrganizationForbidden, "receiver belongs to another organization")
	}

	var kudo *models.Kudo
	err = s.ledger.RunForSender(ctx, sender.ID, func(ctx context.Context) error {
		now := s.quota.Now()
		remaining, err := s.quota.RemainingAsOf(ctx, sender.ID, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute remaining kudos")
		}
		if remaining <= 0 {
			return dErrors.New(dErrors.CodeQuotaExhausted, fmt.Sprintf("weekly kudos quota of %d exhausted", s.quota.Limit()))
		}
		msg, err := models.NormalizeMessage(message, s.maxMessageLength)
		if err != nil {
			return err
		}

		k := &models.Kudo{
			ID:         id.NewKudoID(),
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Message:    msg,
			CreatedAt:  now,
		}
		if err := s.ledger.Append(ctx, k); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record kudo")
		}
		kudo = k
		return nil
	})
	if err != nil {
		var coded *dErrors.Error
		if !errors.As(err, &coded) {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to record kudo")
		}
		return nil, id.OrganizationID{}, err
	}
	return kudo, sender.OrganizationID, nil
}

func (s *Service) publish(ctx context.Context, e events.KudoIssued) {
	if s.publisher == nil {
		return
	}
	// The kudo is already committed: a slow broker or a departing client must
	// not hold the response or abort the publish.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishKudoIssued(pctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to publish kudo event",
			"kudo_id", e.KudoID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) recordRejection(ctx context.Context, code dErrors.Code) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(string(code))
	}
	if code != dErrors.CodeInternal {
		s.logger.InfoContext(ctx, "kudo_rejected",
			"reason", code,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// lookupErr maps a directory miss to code and anything else to an internal error.
func lookupErr(err error, code dErrors.Code, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(code, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "directory lookup failed")
}
