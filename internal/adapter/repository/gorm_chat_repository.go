package repository

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentalhub/internal/domain/entity"
	"rentalhub/pkg/errors"
	"rentalhub/pkg/logger"
)

type gormChatRepository struct {
	db  *gorm.DB
	now func() time.Time
}

const participantExists = "EXISTS (SELECT 1 FROM chat_participants p WHERE p.chat_room_id = chat_rooms.id AND p.user_id = ?)"

func (r *gormChatRepository) FindRoom(ctx context.Context, propertyID, userA, userB string) (*entity.ChatRoom, error) {
	// A miss is routine here. Take would log it as ErrRecordNotFound.
	rooms := make([]*entity.ChatRoom, 0, 1)
	err := r.db.WithContext(ctx).
		Where("chat_rooms.property_id = ?", propertyID).
		Where(participantExists, userA).
		Where(participantExists, userB).
		Order("chat_rooms.created_at ASC, chat_rooms.id ASC").
		Limit(1).
		Find(&rooms).Error
	if err != nil {
		logger.Error("FindRoom failed for property %s: %v", propertyID, err)
		return nil, errors.Internal("Failed to look up chat room", err)
	}
	if len(rooms) == 0 {
		return nil, nil
	}
	return rooms[0], nil
}

func (r *gormChatRepository) GetRoom(ctx context.Context, chatRoomID string) (*entity.ChatRoom, error) {
	var room entity.ChatRoom
	err := r.db.WithContext(ctx).Take(&room, "id = ?", chatRoomID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Chat", nil)
		}
		return nil, errors.Internal("Failed to get chat room", err)
	}
	return &room, nil
}

func (r *gormChatRepository) CreateRoom(ctx context.Context, room *entity.ChatRoom) (bool, error) {
	now := r.now()
	candidate := entity.ChatRoom{
		ID:              room.ID,
		PropertyID:      room.PropertyID,
		ParticipantLow:  room.ParticipantLow,
		ParticipantHigh: room.ParticipantHigh,
		LastMessageAt:   now,
		CreatedAt:       now,
	}
	if candidate.ID == "" {
		candidate.ID = newID()
	}

	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&candidate)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		participants := []entity.ChatParticipant{
			{ChatRoomID: candidate.ID, UserID: candidate.ParticipantLow, CreatedAt: now},
			{ChatRoomID: candidate.ID, UserID: candidate.ParticipantHigh, CreatedAt: now},
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}
		candidate.Participants = participants
		created = true
		return nil
	})
	if err != nil {
		logger.Error("CreateRoom failed for property %s: %v", room.PropertyID, err)
		return false, errors.Internal("Failed to create chat room", err)
	}
	if created {
		*room = candidate
	}
	return created, nil
}

func (r *gormChatRepository) CreateMessage(ctx context.Context, chatRoomID, senderID, content string) (*entity.Message, error) {
	message := &entity.Message{
		ID:         newID(),
		ChatRoomID: chatRoomID,
		SenderID:   senderID,
		Content:    content,
		CreatedAt:  r.now(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.ChatRoom{}).
			Where("id = ?", chatRoomID).
			Update("last_message_at", message.CreatedAt)
		if res.Error != nil {
			return errors.Internal("Failed to touch chat room", res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.NotFound("Chat", nil)
		}
		if err := tx.Create(message).Error; err != nil {
			return errors.Internal("Failed to create message", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (r *gormChatRepository) ListMessages(ctx context.Context, chatRoomID string) ([]*entity.Message, error) {
	messages := make([]*entity.Message, 0)
	err := r.db.WithContext(ctx).
		Where("chat_room_id = ?", chatRoomID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		logger.Error("ListMessages failed for chat %s: %v", chatRoomID, err)
		return nil, errors.Internal("Failed to list messages", err)
	}
	return messages, nil
}

// MarkSeen stamps every unseen message in the room that recipientUserID did
// not send. Already-seen messages keep their original seenAt.
func (r *gormChatRepository) MarkSeen(ctx context.Context, chatRoomID, recipientUserID string, seenAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("chat_room_id = ? AND sender_id <> ? AND seen_at IS NULL", chatRoomID, recipientUserID).
		Update("seen_at", seenAt)
	if res.Error != nil {
		return 0, errors.Internal("Failed to mark messages as seen", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormChatRepository) ListRoomsForUser(ctx context.Context, userID string) ([]*entity.InboxEntry, error) {
	var rooms []*entity.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where(participantExists, userID).
		Order("chat_rooms.last_message_at DESC, chat_rooms.id ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, errors.Internal("Failed to list chat rooms", err)
	}

	entries := make([]*entity.InboxEntry, 0, len(rooms))
	if len(rooms) == 0 {
		return entries, nil
	}

	roomIDs := make([]string, len(rooms))
	for i, room := range rooms {
		roomIDs[i] = room.ID
	}

	// Latest message per room: no other message in the room sorts after it.
	var latest []*entity.Message
	err = r.db.WithContext(ctx).
		Table("messages m").
		Select("m.*").
		Where("m.chat_room_id IN ?", roomIDs).
		Where(`NOT EXISTS (SELECT 1 FROM messages n WHERE n.chat_room_id = m.chat_room_id
			AND (n.created_at > m.created_at OR (n.created_at = m.created_at AND n.id > m.id)))`).
		Find(&latest).Error
	if err != nil {
		return nil, errors.Internal("Failed to load last messages", err)
	}
	lastByRoom := make(map[string]*entity.Message, len(latest))
	for _, m := range latest {
		lastByRoom[m.ChatRoomID] = m
	}

	for _, room := range rooms {
		entry := &entity.InboxEntry{
			ChatRoomID:    room.ID,
			PeerID:        peerOf(room, userID),
			PropertyID:    room.PropertyID,
			LastMessage:   entity.NoMessagesPlaceholder,
			LastMessageAt: room.LastMessageAt,
		}
		if m, ok := lastByRoom[room.ID]; ok {
			entry.LastMessage = m.Content
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func peerOf(room *entity.ChatRoom, userID string) string {
	for _, p := range room.Participants {
		if p.UserID != userID {
			return p.UserID
		}
	}
	return room.Peer(userID)
}

func (r *gormChatRepository) ListUnseenForUser(ctx context.Context, userID string) ([]*entity.UnreadMessage, error) {
	unread := make([]*entity.UnreadMessage, 0)
	err := r.db.WithContext(ctx).
		Table("messages").
		Select(`messages.id AS message_id, messages.chat_room_id, chat_rooms.property_id,
			messages.sender_id, messages.content, messages.created_at`).
		Joins("JOIN chat_rooms ON chat_rooms.id = messages.chat_room_id").
		Where("messages.sender_id <> ? AND messages.seen_at IS NULL", userID).
		Where(participantExists, userID).
		Order("messages.created_at DESC, messages.id DESC").
		Scan(&unread).Error
	if err != nil {
		logger.Error("ListUnseenForUser failed for user %s: %v", userID, err)
		return nil, errors.Internal("Failed to list unread messages", err)
	}
	return unread, nil
}
