// Package kafka publishes batch lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

// Publisher implements ports.EventPublisher. Events are keyed by batch id so
// every event of one batch lands on the same partition.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(host, topic string) (*Publisher, error) {
	if host == "" {
		return nil, errs.NewValueIsRequiredError("kafka host")
	}
	if topic == "" {
		return nil, errs.NewValueIsRequiredError("kafka topic")
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(host),
			Topic:                  topic,
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, e ports.BatchEvent) error {
	msg, err := encode(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for batch %s: %w", e.Type, e.BatchID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func encode(e ports.BatchEvent) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.BatchID),
		Value: data,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}, nil
}

// NoopPublisher drops events. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ports.BatchEvent) error { return nil }
