package usecase

import (
	"context"
	"time"

	"rentalhub/internal/domain/entity"
	"rentalhub/internal/domain/repository"
	"rentalhub/pkg/errors"
	"rentalhub/pkg/logger"
)

// ReadTracker keeps message seenAt and notification readAt in step when a
// user opens a conversation.
type ReadTracker struct {
	store     repository.Transactor
	resolver  *RoomResolver
	publisher Publisher
}

func NewReadTracker(store repository.Transactor, publisher Publisher) *ReadTracker {
	return &ReadTracker{
		store:     store,
		resolver:  NewRoomResolver(store),
		publisher: publisher,
	}
}

type ReadReceipt struct {
	ChatRoomID        string    `json:"chatId"`
	SeenAt            time.Time `json:"seenAt"`
	MessagesSeen      int64     `json:"messagesSeen"`
	NotificationsRead int64     `json:"notificationsRead"`
}

// MarkConversationRead marks the peer's messages seen and the reader's
// notifications read in one transaction, then tells the rest of the room.
func (t *ReadTracker) MarkConversationRead(ctx context.Context, session Session, propertyID, peerID string) (*ReadReceipt, error) {
	room, err := t.resolver.ResolveRoom(ctx, propertyID, session.UserID, peerID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, errors.NotFound("Chat", nil)
	}

	receipt := &ReadReceipt{ChatRoomID: room.ID}
	err = t.store.InTransaction(ctx, func(stores repository.Stores) error {
		// One instant for seenAt, readAt and the broadcast receipt.
		receipt.SeenAt = stores.Now()
		seen, err := stores.Chats().MarkSeen(ctx, room.ID, session.UserID, receipt.SeenAt)
		if err != nil {
			return err
		}
		read, err := stores.Notifications().MarkRead(ctx, session.UserID, room.ID, receipt.SeenAt)
		if err != nil {
			return err
		}
		receipt.MessagesSeen = seen
		receipt.NotificationsRead = read
		return nil
	})
	if err != nil {
		logger.Error("MarkConversationRead failed for user %s in chat %s: %v", session.UserID, room.ID, err)
		return nil, err
	}

	t.publisher.Publish(ChatChannel(room.ID), EventMessagesMarkedAsRead, MessagesMarkedAsReadEvent{
		SeenAt:   receipt.SeenAt,
		SenderID: peerID,
	}, session.ConnectionID)

	return receipt, nil
}

// OpenConversation returns the history as it was before reading, then marks
// it read. A pair without a room gets an empty history and no receipt.
func (t *ReadTracker) OpenConversation(ctx context.Context, session Session, propertyID, peerID string) ([]*entity.Message, *ReadReceipt, error) {
	room, err := t.resolver.ResolveRoom(ctx, propertyID, session.UserID, peerID)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return []*entity.Message{}, nil, nil
	}

	messages, err := t.store.Chats().ListMessages(ctx, room.ID)
	if err != nil {
		return nil, nil, err
	}
	receipt, err := t.MarkConversationRead(ctx, session, propertyID, peerID)
	if err != nil {
		return nil, nil, err
	}
	return messages, receipt, nil
}
