package repository

import (
	"context"
	"time"

	"rentalhub/internal/domain/entity"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, recipientUserID, chatRoomID, messageID string) (*entity.Notification, error)
	MarkRead(ctx context.Context, recipientUserID, chatRoomID string, readAt time.Time) (int64, error)
	CountUnread(ctx context.Context, recipientUserID string) (int64, error)
}
