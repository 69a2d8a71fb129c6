package usecase

import (
	"time"

	"rentalhub/internal/domain/entity"
)

const (
	EventUserJoined           = "user_joined"
	EventReceiveMessage       = "receive_message"
	EventNewNotification      = "new_notification"
	EventMessagesMarkedAsRead = "messages_marked_as_read"
	EventError                = "error"
	EventChatHistory          = "chatHistory"
	EventUsersChattedWith     = "usersChattedWith"
	EventPong                 = "pong"
)

const (
	NotificationTypeMessage    = "message"
	NotificationTypeNewMessage = "newMessage"
)

func ChatChannel(chatRoomID string) string {
	return "chat_" + chatRoomID
}

func NotificationChannel(userID string) string {
	return "notifications_" + userID
}

type UserJoinedEvent struct {
	UserID string `json:"userId"`
}

type ReceiveMessageEvent struct {
	ID         string     `json:"id"`
	ChatID     string     `json:"chatId"`
	MessageID  string     `json:"messageId"`
	PropertyID string     `json:"propertyId"`
	SenderID   string     `json:"senderId"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"createdAt"`
	SeenAt     *time.Time `json:"seenAt"`
}

// NewNotificationEvent goes to the recipient's private channel. PropertyTitle
// and Name are only set on the first message of a conversation.
type NewNotificationEvent struct {
	Type          string    `json:"type"`
	ChatID        string    `json:"chatId"`
	MessageID     string    `json:"messageId"`
	PropertyID    string    `json:"propertyId"`
	SenderID      string    `json:"senderId"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	PropertyTitle string    `json:"propertyTitle,omitempty"`
	Name          string    `json:"name,omitempty"`
}

type MessagesMarkedAsReadEvent struct {
	SeenAt   time.Time `json:"seenAt"`
	SenderID string    `json:"senderId"`
}

type ErrorEvent struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newReceiveMessageEvent(room *entity.ChatRoom, message *entity.Message) ReceiveMessageEvent {
	return ReceiveMessageEvent{
		ID:         message.ID,
		ChatID:     room.ID,
		MessageID:  message.ID,
		PropertyID: room.PropertyID,
		SenderID:   message.SenderID,
		Content:    message.Content,
		CreatedAt:  message.CreatedAt,
		SeenAt:     message.SeenAt,
	}
}
