package room

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventPublisher hands completed rounds to the external game-history and
// economy collaborators
type EventPublisher interface {
	PublishRoundCompleted(ctx context.Context, ev RoundCompleted) error
}

// KafkaPublisher publishes round events to a kafka topic
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaWriter returns a kafka writer for the round event topic
func NewKafkaWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaPublisher returns a kafka-backed event publisher
func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// PublishRoundCompleted publishes a round_completed event keyed by room
func (p *KafkaPublisher) PublishRoundCompleted(ctx context.Context, ev RoundCompleted) error {
	ev.TsUnixMs = time.Now().UnixMilli()

	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.RoomID),
		Value: b,
	})
}

// NopPublisher discards round events
type NopPublisher struct{}

// PublishRoundCompleted does nothing
func (NopPublisher) PublishRoundCompleted(context.Context, RoundCompleted) error { return nil }
