package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"rentalhub/internal/domain/entity"
	"rentalhub/internal/domain/repository"
	"rentalhub/pkg/errors"
	"rentalhub/pkg/logger"
)

const (
	MaxContentLength = 4000

	// ActionSendMessage is the rate limiter action charged per message.
	ActionSendMessage = "send_message"
)

const (
	directoryFanOut    = 8
	taskNotify         = "new_notification"
	taskLogInteraction = "log_interaction"
)

type ChatUseCase struct {
	store        repository.Transactor
	interactions repository.InteractionRepository
	users        repository.UserDirectory
	properties   repository.PropertyDirectory
	publisher    Publisher
	tasks        TaskEnqueuer
	rateLimiter  RateLimiter
	resolver     *RoomResolver
}

func NewChatUseCase(
	store repository.Transactor,
	interactions repository.InteractionRepository,
	users repository.UserDirectory,
	properties repository.PropertyDirectory,
	publisher Publisher,
	tasks TaskEnqueuer,
	rateLimiter RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		store:        store,
		interactions: interactions,
		users:        users,
		properties:   properties,
		publisher:    publisher,
		tasks:        tasks,
		rateLimiter:  rateLimiter,
		resolver:     NewRoomResolver(store),
	}
}

type SendMessageInput struct {
	PropertyID string
	PeerID     string
	Content    string
}

type SendMessageResult struct {
	Room         *entity.ChatRoom
	Message      *entity.Message
	Notification *entity.Notification
	RoomCreated  bool
}

// SendMessage persists the message and its notification in one transaction,
// then fans out. Nothing is published when any step fails.
func (uc *ChatUseCase) SendMessage(ctx context.Context, session Session, input SendMessageInput) (*SendMessageResult, error) {
	if err := validateRoomKey(input.PropertyID, session.UserID, input.PeerID); err != nil {
		return nil, err
	}
	if session.UserID == input.PeerID {
		return nil, errors.Validation("Cannot send a message to yourself", nil)
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.Validation("Message content is required", nil)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, errors.Validation("Message content is too long", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(session.UserID, ActionSendMessage); !allowed {
			logger.Warn("SendMessage rate limited: user %s must wait %v", session.UserID, wait)
			return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
		}
	}

	result := &SendMessageResult{}
	err := uc.store.InTransaction(ctx, func(stores repository.Stores) error {
		room, created, err := getOrCreateRoom(ctx, stores.Chats(), input.PropertyID, session.UserID, input.PeerID)
		if err != nil {
			return err
		}

		message, err := stores.Chats().CreateMessage(ctx, room.ID, session.UserID, content)
		if err != nil {
			return err
		}

		notification, err := stores.Notifications().CreateNotification(ctx, room.Peer(session.UserID), room.ID, message.ID)
		if err != nil {
			return err
		}

		result.Room = room
		result.Message = message
		result.Notification = notification
		result.RoomCreated = created
		return nil
	})
	if err != nil {
		logger.Error("SendMessage failed for user %s on property %s: %v", session.UserID, input.PropertyID, err)
		return nil, err
	}

	channel := ChatChannel(result.Room.ID)
	uc.publisher.Publish(channel, EventReceiveMessage, newReceiveMessageEvent(result.Room, result.Message), session.ConnectionID)
	if session.ConnectionID != "" {
		uc.publisher.Join(session.ConnectionID, channel)
	}

	uc.enqueueNotification(ctx, result)
	uc.enqueueInteraction(ctx, session.UserID, input.PropertyID)

	return result, nil
}

func (uc *ChatUseCase) enqueueNotification(ctx context.Context, result *SendMessageResult) {
	recipient := result.Notification.RecipientUserID
	event := NewNotificationEvent{
		Type:       NotificationTypeMessage,
		ChatID:     result.Room.ID,
		MessageID:  result.Message.ID,
		PropertyID: result.Room.PropertyID,
		SenderID:   result.Message.SenderID,
		Content:    result.Message.Content,
		CreatedAt:  result.Message.CreatedAt,
	}
	created := result.RoomCreated

	err := uc.tasks.Enqueue(ctx, recipient, taskNotify, func(ctx context.Context) error {
		if created {
			event.Type = NotificationTypeNewMessage
			event.PropertyTitle, event.Name = uc.firstContactDetails(ctx, event.PropertyID, event.SenderID)
		}
		uc.publisher.Publish(NotificationChannel(recipient), EventNewNotification, event, "")
		return nil
	})
	if err != nil {
		logger.Warn("Failed to enqueue notification for %s: %v", recipient, err)
	}
}

// firstContactDetails looks up the property title and sender name in
// parallel. Lookup failures leave the field empty.
func (uc *ChatUseCase) firstContactDetails(ctx context.Context, propertyID, senderID string) (string, string) {
	var title, name string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		property, err := uc.properties.GetProperty(gctx, propertyID)
		if err != nil {
			logger.Warn("Property lookup failed for %s: %v", propertyID, err)
			return nil
		}
		title = property.Title
		return nil
	})
	g.Go(func() error {
		user, err := uc.users.GetUser(gctx, senderID)
		if err != nil {
			logger.Warn("User lookup failed for %s: %v", senderID, err)
			return nil
		}
		name = user.Name
		return nil
	})
	g.Wait()
	return title, name
}

func (uc *ChatUseCase) enqueueInteraction(ctx context.Context, userID, propertyID string) {
	if uc.interactions == nil {
		return
	}
	err := uc.tasks.Enqueue(ctx, userID, taskLogInteraction, func(ctx context.Context) error {
		return uc.interactions.Record(ctx, userID, propertyID, entity.InteractionMessage)
	})
	if err != nil {
		logger.Warn("Failed to enqueue interaction for %s: %v", userID, err)
	}
}

// JoinRoom subscribes the connection to an existing room. It never creates
// one; callers send a message first.
func (uc *ChatUseCase) JoinRoom(ctx context.Context, session Session, propertyID, peerID string) (*entity.ChatRoom, error) {
	room, err := uc.resolver.ResolveRoom(ctx, propertyID, session.UserID, peerID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, errors.NotFound("Chat", nil)
	}

	channel := ChatChannel(room.ID)
	uc.publisher.Join(session.ConnectionID, channel)
	uc.publisher.Publish(channel, EventUserJoined, UserJoinedEvent{UserID: session.UserID}, session.ConnectionID)
	return room, nil
}

func (uc *ChatUseCase) LeaveRoom(ctx context.Context, session Session, propertyID, peerID string) error {
	room, err := uc.resolver.ResolveRoom(ctx, propertyID, session.UserID, peerID)
	if err != nil {
		return err
	}
	if room == nil {
		return errors.NotFound("Chat", nil)
	}
	uc.publisher.Leave(session.ConnectionID, ChatChannel(room.ID))
	return nil
}

func (uc *ChatUseCase) JoinNotifications(session Session) {
	uc.publisher.Join(session.ConnectionID, NotificationChannel(session.UserID))
}

// History returns the conversation oldest first, or an empty list when the
// pair has no room for the property.
func (uc *ChatUseCase) History(ctx context.Context, propertyID, userA, userB string) ([]*entity.Message, error) {
	room, err := uc.resolver.ResolveRoom(ctx, propertyID, userA, userB)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return []*entity.Message{}, nil
	}
	return uc.store.Chats().ListMessages(ctx, room.ID)
}

// Inbox lists the user's conversations, most recently active first, with
// peer names and property titles filled in from the directories.
func (uc *ChatUseCase) Inbox(ctx context.Context, userID string) ([]*entity.InboxEntry, error) {
	if err := validateID("currentUserId", userID); err != nil {
		return nil, err
	}
	entries, err := uc.store.Chats().ListRoomsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(directoryFanOut)
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			if user, err := uc.users.GetUser(gctx, entry.PeerID); err == nil {
				entry.PeerName = user.Name
			} else if !errors.Is(err, errors.CodeNotFound) {
				logger.Warn("User lookup failed for %s: %v", entry.PeerID, err)
			}
			if property, err := uc.properties.GetProperty(gctx, entry.PropertyID); err == nil {
				entry.PropertyTitle = property.Title
			} else if !errors.Is(err, errors.CodeNotFound) {
				logger.Warn("Property lookup failed for %s: %v", entry.PropertyID, err)
			}
			return nil
		})
	}
	g.Wait()

	return entries, nil
}

func (uc *ChatUseCase) Unread(ctx context.Context, userID string) ([]*entity.UnreadMessage, error) {
	if err := validateID("currentUserId", userID); err != nil {
		return nil, err
	}
	return uc.store.Chats().ListUnseenForUser(ctx, userID)
}

func (uc *ChatUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if err := validateID("currentUserId", userID); err != nil {
		return 0, err
	}
	return uc.store.Notifications().CountUnread(ctx, userID)
}
