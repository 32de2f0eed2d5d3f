package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"booking-service/src/internal/model"
	kafka "booking-service/src/pkg/kafka/confluent"
	"booking-service/src/pkg/log"

	k "gopkg.in/confluentinc/confluent-kafka-go.v1/kafka"
)

// Producer publishes JSON-encoded events keyed by event id so every event about the same
// entity lands on one partition.
type Producer[T model.Event] struct {
	Producer kafka.Producer
	Topic    string
	Log      log.Log
	// Headers optionally tags each message for consumers that route without decoding.
	Headers func(event T) map[string]string
}

func (p *Producer[T]) Send(ctx context.Context, event T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.Log.Error("gateway/messaging/producer", "failed to marshal event", "Send", err.Error())
		return fmt.Errorf("marshal %s event: %w", p.Topic, err)
	}

	message := &k.Message{
		TopicPartition: k.TopicPartition{Topic: &p.Topic, Partition: k.PartitionAny},
		Key:            []byte(event.GetId()),
		Value:          value,
	}
	if p.Headers != nil {
		for key, v := range p.Headers(event) {
			message.Headers = append(message.Headers, k.Header{Key: key, Value: []byte(v)})
		}
	}

	if err := p.Producer.Publish(message); err != nil {
		p.Log.Error("send-event", "error send message", p.Topic, err.Error())
		return err
	}
	return nil
}
