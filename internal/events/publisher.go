package events

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers events to the stream. Delivery is best-effort:
// the order transaction never depends on a publish succeeding.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// KafkaPublisher writes events to Kafka, one topic per subject
// (order:created -> order.created).
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers. Topics are
// auto-created on first write so a fresh broker needs no provisioning.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: TopicFor(ev.Subject),
		Key:   []byte(ev.Key),
		Value: ev.Payload,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "subject", Value: []byte(ev.Subject)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// TopicFor maps a subject name to its Kafka topic.
func TopicFor(subject string) string {
	return strings.ReplaceAll(subject, ":", ".")
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
