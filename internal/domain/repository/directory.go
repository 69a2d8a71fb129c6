package repository

import (
	"context"

	"rentalhub/internal/domain/entity"
)

// UserDirectory is the account service as seen by the chat layer.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*entity.User, error)
}

// PropertyDirectory is the listing service as seen by the chat layer.
type PropertyDirectory interface {
	GetProperty(ctx context.Context, id string) (*entity.Property, error)
}
