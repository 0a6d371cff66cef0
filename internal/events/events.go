// Package events defines the wire types shared by the API server, the
// chat server and the gateway hub: the closed set of event names, the
// JSON envelope exchanged over websocket connections, and the
// notification record carried on the Kafka topic between the two
// processes.
package events

import (
	"context"
	"encoding/json"

	"studychat/internal/models"
)

// EventName identifies a server-originated realtime event. The set is
// closed; both the producers and the gateway dispatch exhaustively over
// it and drop anything else.
type EventName string

const (
	EventNewMessage            EventName = "new_message"
	EventUserTyping            EventName = "user_typing"
	EventFriendRequestReceived EventName = "friend_request_received"
	EventFriendRequestAccepted EventName = "friend_request_accepted"
)

// ClientEventName identifies a client-originated websocket event.
type ClientEventName string

const (
	ClientJoinChat    ClientEventName = "join_chat"
	ClientSendMessage ClientEventName = "send_message"
	ClientTyping      ClientEventName = "typing"
)

// Envelope is the frame exchanged on websocket connections in both
// directions: a name plus a raw payload decoded by the receiver.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope marshals payload into an outbound envelope frame.
func NewEnvelope(event EventName, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: string(event), Data: data})
}

// Notification is the record published to Kafka after a successful
// store mutation. Exactly one of Room/UserIDs addresses the delivery:
// Room fans out to every connection subscribed to the room, UserIDs
// delivers directly to each user's registered connection (and is
// silently dropped for users without one).
type Notification struct {
	Event   EventName       `json:"event"`
	Room    string          `json:"room,omitempty"`
	UserIDs []uint          `json:"userIds,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// NewNotification marshals payload into a Notification.
func NewNotification(event EventName, room string, userIDs []uint, payload any) (Notification, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Notification{}, err
	}
	return Notification{Event: event, Room: room, UserIDs: userIDs, Payload: data}, nil
}

// Publisher hands a notification to the delivery pipeline. Publishing is
// fire-and-forget relative to the store write that triggered it: callers
// log failures and never propagate them.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// Client payload shapes.

// JoinChatPayload subscribes the sender to the 1:1 room shared with a
// friend. The user id is taken from the authenticated connection, never
// from the payload.
type JoinChatPayload struct {
	FriendID uint `json:"friendId"`
}

// SendMessagePayload carries a direct message sent over the websocket.
type SendMessagePayload struct {
	FriendID    uint               `json:"friendId"`
	Content     string             `json:"content"`
	MessageType models.MessageType `json:"messageType,omitempty"`
}

// TypingPayload is the ephemeral typing indicator. It is broadcast to
// the shared room and never persisted.
type TypingPayload struct {
	FriendID uint `json:"friendId,omitempty"`
	UserID   uint `json:"userId,omitempty"`
	IsTyping bool `json:"isTyping"`
}

// FriendRequestPayload notifies the target of a new pending request.
type FriendRequestPayload struct {
	Requester *models.UserBasicInfo `json:"requester"`
}

// FriendAcceptedPayload notifies one party of an acceptance; each side
// receives the other's identity.
type FriendAcceptedPayload struct {
	Friend *models.UserBasicInfo `json:"friend"`
}
