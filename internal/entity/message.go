package entity

import "time"

// MessageType distinguishes user text from generated notices.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageDocument MessageType = "document"
	MessageSystem   MessageType = "system"
)

// Message is a note exchanged between deal participants.
type Message struct {
	ID          string      `json:"id"`
	DealID      string      `json:"dealId"`
	SenderID    string      `json:"senderId"`
	ReceiverID  string      `json:"receiverId"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType"`
	IsRead      bool        `json:"isRead"`
	CreatedAt   time.Time   `json:"createdAt"`
}
