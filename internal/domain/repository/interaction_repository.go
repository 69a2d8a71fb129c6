package repository

import "context"

type InteractionRepository interface {
	Record(ctx context.Context, userID, propertyID, interactionType string) error
}
