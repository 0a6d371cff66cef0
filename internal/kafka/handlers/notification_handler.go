// Package handlers contains the chat server's Kafka message handlers.
package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"studychat/internal/events"
	"studychat/internal/websocket"
)

// NewNotificationHandler returns the handler for the notifications
// topic: decode the record and hand it to the hub. Undecodable records
// are logged and committed; retrying them can never succeed.
func NewNotificationHandler(hub *websocket.Hub) func(ctx context.Context, msg *kafka.Message) error {
	return func(ctx context.Context, msg *kafka.Message) error {
		var notification events.Notification
		if err := json.Unmarshal(msg.Value, &notification); err != nil {
			log.Printf("dropping undecodable notification (offset %v): %v", msg.TopicPartition.Offset, err)
			return nil
		}
		hub.Dispatch(notification)
		return nil
	}
}
