package messaging

import (
	"context"
	"errors"

	"booking-service/src/internal/model"
	kafka "booking-service/src/pkg/kafka/confluent"
	"booking-service/src/pkg/log"
)

const TopicNotification = "booking-notification"

// NotificationProducer publishes notifications to Kafka keyed by notification id.
type NotificationProducer struct {
	Producer[*model.Notification]
}

func NewNotificationProducer(producer kafka.Producer, log log.Log, topic string) *NotificationProducer {
	if topic == "" {
		topic = TopicNotification
	}
	return &NotificationProducer{
		Producer: Producer[*model.Notification]{
			Producer: producer,
			Topic:    topic,
			Log:      log,
			Headers: func(n *model.Notification) map[string]string {
				return map[string]string{"type": n.Type, "recipient-model": n.RecipientModel}
			},
		},
	}
}

func (p *NotificationProducer) Dispatch(ctx context.Context, n *model.Notification) error {
	if p.Producer.Producer == nil {
		return errors.New("kafka producer is disabled")
	}
	return p.Send(ctx, n)
}
