package services

import (
	"context"
	"log"

	"studychat/internal/events"
)

// publishNotification builds and publishes a notification, logging any
// failure. Delivery is best effort: the store write already succeeded
// and must not be rolled back or reported as failed because the
// pipeline hiccuped.
func publishNotification(ctx context.Context, publisher events.Publisher, event events.EventName, room string, userIDs []uint, payload any) {
	if publisher == nil {
		return
	}
	n, err := events.NewNotification(event, room, userIDs, payload)
	if err != nil {
		log.Printf("failed to encode %s notification: %v", event, err)
		return
	}
	if err := publisher.Publish(ctx, n); err != nil {
		log.Printf("failed to publish %s notification: %v", event, err)
	}
}
