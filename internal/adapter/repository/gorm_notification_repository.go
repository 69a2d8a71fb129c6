package repository

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"rentalhub/internal/domain/entity"
	"rentalhub/pkg/errors"
)

type gormNotificationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *gormNotificationRepository) CreateNotification(ctx context.Context, recipientUserID, chatRoomID, messageID string) (*entity.Notification, error) {
	db := r.db.WithContext(ctx)

	var found int64
	if err := db.Model(&entity.Message{}).
		Where("id = ? AND chat_room_id = ?", messageID, chatRoomID).
		Count(&found).Error; err != nil {
		return nil, errors.Internal("Failed to check message", err)
	}
	if found == 0 {
		return nil, errors.NotFound("Message", nil)
	}

	var existing int64
	if err := db.Model(&entity.Notification{}).Where("message_id = ?", messageID).Count(&existing).Error; err != nil {
		return nil, errors.Internal("Failed to check notification", err)
	}
	if existing > 0 {
		return nil, errors.Conflict("Notification already exists for message", nil)
	}

	notification := &entity.Notification{
		ID:              newID(),
		RecipientUserID: recipientUserID,
		ChatRoomID:      chatRoomID,
		MessageID:       messageID,
		CreatedAt:       r.now(),
	}
	if err := db.Create(notification).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("Notification already exists for message", err)
		}
		return nil, errors.Internal("Failed to create notification", err)
	}
	return notification, nil
}

// MarkRead only touches unread rows, so repeated calls keep the first readAt.
func (r *gormNotificationRepository) MarkRead(ctx context.Context, recipientUserID, chatRoomID string, readAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("recipient_user_id = ? AND chat_room_id = ? AND read_at IS NULL", recipientUserID, chatRoomID).
		Update("read_at", readAt)
	if res.Error != nil {
		return 0, errors.Internal("Failed to mark notifications as read", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormNotificationRepository) CountUnread(ctx context.Context, recipientUserID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("recipient_user_id = ? AND read_at IS NULL", recipientUserID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Internal("Failed to count notifications", err)
	}
	return count, nil
}
