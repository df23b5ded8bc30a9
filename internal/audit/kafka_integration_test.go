//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"fiscalid/internal/audit"
	"fiscalid/internal/platform/config"
	"fiscalid/internal/platform/kafka"
	"fiscalid/pkg/testutil/containers"
)

type KafkaSinkSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	producer *kgo.Client
	topic    string
}

func TestKafkaSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSinkSuite))
}

func (s *KafkaSinkSuite) SetupSuite() {
	ctx := context.Background()
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
	s.topic = "fiscalid.audit.test"

	producer, err := kafka.NewProducer(ctx, config.Kafka{Brokers: s.redpanda.Brokers, AuditTopic: s.topic})
	s.Require().NoError(err)
	s.Require().NotNil(producer)
	s.Require().NoError(kafka.EnsureTopic(ctx, producer, s.topic, 1))
	s.Require().NoError(kafka.EnsureTopic(ctx, producer, s.topic, 1), "second call tolerates an existing topic")
	s.producer = producer
}

func (s *KafkaSinkSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *KafkaSinkSuite) TestEventIsProducedKeyedByOwner() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pub := audit.NewPublisher(audit.NewKafkaSink(s.producer, s.topic))
	defer pub.Close()
	s.Require().NoError(pub.Emit(ctx, audit.Event{
		OwnerID: "gid://shopify/Customer/1001",
		Action:  audit.ActionProfileUpdated,
		SetKeys: []string{"ex_phone"},
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	rec := records[0]
	s.Equal("gid://shopify/Customer/1001", string(rec.Key))
	var got audit.Event
	s.Require().NoError(json.Unmarshal(rec.Value, &got))
	s.Equal(audit.ActionProfileUpdated, got.Action)
	s.Equal(audit.CategoryCompliance, got.Category)
	s.Equal([]string{"ex_phone"}, got.SetKeys)
}
