package entity

import "time"

const NoMessagesPlaceholder = "No messages"

// InboxEntry is one conversation in a user's inbox.
type InboxEntry struct {
	ChatRoomID    string    `json:"chatId"`
	PeerID        string    `json:"id"`
	PeerName      string    `json:"name"`
	PropertyID    string    `json:"propertyId"`
	PropertyTitle string    `json:"propertyTitle,omitempty"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}
