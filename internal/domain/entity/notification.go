package entity

import "time"

type Notification struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	RecipientUserID string     `json:"recipientUserId" gorm:"size:128;not null;index:idx_notifications_recipient_room,priority:1"`
	ChatRoomID      string     `json:"chatId" gorm:"size:36;not null;index:idx_notifications_recipient_room,priority:2"`
	MessageID       string     `json:"messageId" gorm:"size:36;not null;uniqueIndex"`
	CreatedAt       time.Time  `json:"createdAt" gorm:"not null"`
	ReadAt          *time.Time `json:"readAt"`
}
