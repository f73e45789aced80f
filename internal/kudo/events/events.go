// Package events publishes notifications about issued kudos.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"kudos/internal/kudo/models"
	id "kudos/pkg/domain"
)

// TypeKudoIssued is the event type header value.
const TypeKudoIssued = "kudo.issued"

// KudoIssued is emitted once a kudo is committed to the ledger.
type KudoIssued struct {
	KudoID         id.KudoID         `json:"kudo_id"`
	SenderID       id.UserID         `json:"sender_id"`
	ReceiverID     id.UserID         `json:"receiver_id"`
	OrganizationID id.OrganizationID `json:"organization_id"`
	CreatedAt      time.Time         `json:"created_at"`
}

// NewKudoIssued builds the event for k issued within orgID.
func NewKudoIssued(k *models.Kudo, orgID id.OrganizationID) KudoIssued {
	return KudoIssued{
		KudoID:         k.ID,
		SenderID:       k.SenderID,
		ReceiverID:     k.ReceiverID,
		OrganizationID: orgID,
		CreatedAt:      k.CreatedAt,
	}
}

// LogPublisher writes events to the structured log.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishKudoIssued(ctx context.Context, e KudoIssued) error {
	p.logger.InfoContext(ctx, TypeKudoIssued,
		"kudo_id", e.KudoID,
		"sender_id", e.SenderID,
		"receiver_id", e.ReceiverID,
		"organization_id", e.OrganizationID,
		"created_at", e.CreatedAt,
	)
	return nil
}

// Producer is the part of *kgo.Client the Kafka publisher uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher produces events as JSON records keyed by sender, so a sender's
// events stay ordered within a partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaPublisher(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishKudoIssued(ctx context.Context, e KudoIssued) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", TypeKudoIssued, err)
	}
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.SenderID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(TypeKudoIssued)},
		},
		Timestamp: e.CreatedAt,
	}
	if err := p.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", TypeKudoIssued, err)
	}
	return nil
}
