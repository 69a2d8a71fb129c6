package usecase

import (
	"context"
	"fmt"

	"rentalhub/internal/domain/entity"
	"rentalhub/internal/domain/repository"
	"rentalhub/pkg/errors"
)

const maxIDLength = 128

// RoomResolver finds the room for a (property, user pair), creating it on
// first contact.
type RoomResolver struct {
	stores repository.Stores
}

func NewRoomResolver(stores repository.Stores) *RoomResolver {
	return &RoomResolver{stores: stores}
}

// ResolveRoom never creates. It returns nil when the pair has not talked
// about the property yet.
func (r *RoomResolver) ResolveRoom(ctx context.Context, propertyID, userA, userB string) (*entity.ChatRoom, error) {
	if err := validateRoomKey(propertyID, userA, userB); err != nil {
		return nil, err
	}
	return r.stores.Chats().FindRoom(ctx, propertyID, userA, userB)
}

// GetOrCreateRoom reports created=true only to the caller whose insert won.
// Concurrent callers for the same tuple all get the same room.
func (r *RoomResolver) GetOrCreateRoom(ctx context.Context, propertyID, userA, userB string) (*entity.ChatRoom, bool, error) {
	if err := validateRoomKey(propertyID, userA, userB); err != nil {
		return nil, false, err
	}
	return getOrCreateRoom(ctx, r.stores.Chats(), propertyID, userA, userB)
}

func getOrCreateRoom(ctx context.Context, chats repository.ChatRepository, propertyID, userA, userB string) (*entity.ChatRoom, bool, error) {
	room, err := chats.FindRoom(ctx, propertyID, userA, userB)
	if err != nil {
		return nil, false, err
	}
	if room != nil {
		return room, false, nil
	}

	low, high := entity.SortedPair(userA, userB)
	room = &entity.ChatRoom{PropertyID: propertyID, ParticipantLow: low, ParticipantHigh: high}
	created, err := chats.CreateRoom(ctx, room)
	if err != nil {
		return nil, false, err
	}
	if created {
		return room, true, nil
	}

	// Lost the race; the winner's row is committed or visible in this tx.
	room, err = chats.FindRoom(ctx, propertyID, userA, userB)
	if err != nil {
		return nil, false, err
	}
	if room == nil {
		return nil, false, errors.Conflict("Chat room was created concurrently but could not be read back", nil)
	}
	return room, false, nil
}

func validateRoomKey(propertyID, userA, userB string) error {
	if err := validateID("propertyId", propertyID); err != nil {
		return err
	}
	if err := validateID("currentUserId", userA); err != nil {
		return err
	}
	return validateID("selectedUserId", userB)
}

func validateID(field, value string) error {
	if value == "" {
		return errors.Validation(fmt.Sprintf("%s is required", field), nil)
	}
	if len(value) > maxIDLength {
		return errors.Validation(fmt.Sprintf("%s must be at most %d characters", field, maxIDLength), nil)
	}
	return nil
}
