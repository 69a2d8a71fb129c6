package entity

import "time"

type Message struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	ChatRoomID string     `json:"chatId" gorm:"size:36;not null;index:idx_messages_room_created,priority:1"`
	SenderID   string     `json:"senderId" gorm:"size:128;not null;index"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"not null;index:idx_messages_room_created,priority:2"`
	SeenAt     *time.Time `json:"seenAt"`
}

// UnreadMessage is a message not yet seen by the user it was listed for.
type UnreadMessage struct {
	MessageID  string    `json:"messageId"`
	ChatRoomID string    `json:"chatId"`
	PropertyID string    `json:"propertyId"`
	SenderID   string    `json:"senderId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}
