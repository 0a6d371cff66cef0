package models

// MessageType classifies the message payload.
type MessageType string

const (
	TextMessage   MessageType = "text"
	ImageMessage  MessageType = "image"
	FileMessage   MessageType = "file"
	EmojiMessage  MessageType = "emoji"
	SystemMessage MessageType = "system"
)

// Message is a stored direct or group message. Exactly one of
// ReceiverID/GroupID is set; the services enforce that at write time,
// the schema deliberately does not. Rows are immutable after creation
// except for the IsRead flag, which the receiver flips.
type Message struct {
	BaseModel
	SenderID   uint        `gorm:"not null;index" json:"senderId"`
	ReceiverID *uint       `gorm:"index" json:"receiverId,omitempty"`
	GroupID    *uint       `gorm:"index" json:"groupId,omitempty"`
	Type       MessageType `gorm:"type:varchar(20);not null;default:'text'" json:"messageType"`
	Content    string      `gorm:"type:text;not null" json:"content"`
	IsRead     bool        `gorm:"default:false" json:"isRead"`
}

func (Message) TableName() string {
	return "messages"
}
