package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"studychat/internal/config"
	"studychat/internal/events"
)

// notifier publishes notifications to the shared topic. Room-addressed
// notifications are keyed by room so all events of one conversation
// land on the same partition and keep their order.
type notifier struct {
	producer MessageProducer
	topic    string
}

// NewNotifier wraps a producer as an events.Publisher for the
// configured notifications topic.
func NewNotifier(producer MessageProducer, cfg config.KafkaConfig) events.Publisher {
	return &notifier{producer: producer, topic: cfg.NotificationsTopic}
}

func (n *notifier) Publish(ctx context.Context, notification events.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	var key []byte
	switch {
	case notification.Room != "":
		key = []byte(notification.Room)
	case len(notification.UserIDs) > 0:
		key = []byte(strconv.FormatUint(uint64(notification.UserIDs[0]), 10))
	}
	return n.producer.SendMessage(ctx, n.topic, key, payload)
}
