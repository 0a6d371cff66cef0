package models

// Conversation is a derived view, never stored: one accepted friend,
// the most recent direct message between the two users (nil when they
// have no history) and how many of the friend's messages the owner has
// not read yet. It is recomputed on every request.
type Conversation struct {
	User        *UserBasicInfo `json:"user"`
	LastMessage *Message       `json:"lastMessage"`
	UnreadCount int64          `json:"unreadCount"`
}
