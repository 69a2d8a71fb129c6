package repository

import (
	"context"
	"time"

	"rentalhub/internal/domain/entity"
)

type ChatRepository interface {
	// FindRoom returns the room for propertyID that has both users as
	// participants, or nil when there is none.
	FindRoom(ctx context.Context, propertyID, userA, userB string) (*entity.ChatRoom, error)
	GetRoom(ctx context.Context, chatRoomID string) (*entity.ChatRoom, error)
	// CreateRoom inserts the room and its two participants. It reports
	// created=false, and leaves room untouched, when a room for the same
	// property and pair already exists.
	CreateRoom(ctx context.Context, room *entity.ChatRoom) (bool, error)

	CreateMessage(ctx context.Context, chatRoomID, senderID, content string) (*entity.Message, error)
	ListMessages(ctx context.Context, chatRoomID string) ([]*entity.Message, error)
	// MarkSeen sets seenAt on the unseen messages recipientUserID did not send.
	MarkSeen(ctx context.Context, chatRoomID, recipientUserID string, seenAt time.Time) (int64, error)

	ListRoomsForUser(ctx context.Context, userID string) ([]*entity.InboxEntry, error)
	ListUnseenForUser(ctx context.Context, userID string) ([]*entity.UnreadMessage, error)
}
