//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"kudos/internal/kudo/events"
	"kudos/internal/kudo/models"
	"kudos/internal/platform/config"
	"kudos/internal/platform/kafka"
	id "kudos/pkg/domain"
	"kudos/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	cfg      config.KafkaConfig
	producer *kgo.Client
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	broker := containers.GetManager().GetRedpanda(s.T())
	s.cfg = config.KafkaConfig{
		Brokers:           broker.Brokers,
		Topic:             "kudos.issued.test",
		Partitions:        1,
		ReplicationFactor: 1,
	}

	client, err := kafka.NewClient(s.cfg)
	s.Require().NoError(err)
	s.producer = client

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(kafka.EnsureTopic(ctx, client, s.cfg))
	// second call tolerates the existing topic
	s.Require().NoError(kafka.EnsureTopic(ctx, client, s.cfg))
	s.Require().NoError(kafka.Health(ctx, client))
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *KafkaPublisherSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	k := &models.Kudo{
		ID:         id.NewKudoID(),
		SenderID:   id.NewUserID(),
		ReceiverID: id.NewUserID(),
		Message:    "thanks",
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	event := events.NewKudoIssued(k, id.NewOrganizationID())
	s.Require().NoError(events.NewKafkaPublisher(s.producer, s.cfg.Topic).PublishKudoIssued(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.cfg.Brokers...),
		kgo.ConsumeTopics(s.cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var got *kgo.Record
	for got == nil {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "timed out waiting for record")
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) == k.SenderID.String() {
				got = r
			}
		})
	}

	var decoded events.KudoIssued
	s.Require().NoError(json.Unmarshal(got.Value, &decoded))
	s.Equal(event.KudoID, decoded.KudoID)
	s.Equal(event.OrganizationID, decoded.OrganizationID)
	s.True(event.CreatedAt.Equal(decoded.CreatedAt))
	s.Require().Len(got.Headers, 1)
	s.Equal(events.TypeKudoIssued, string(got.Headers[0].Value))
}
