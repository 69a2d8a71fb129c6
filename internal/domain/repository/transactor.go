package repository

import (
	"context"
	"time"
)

// Stores is the set of repositories bound to one unit of work.
type Stores interface {
	Chats() ChatRepository
	Notifications() NotificationRepository
	// Now is the store's clock at the precision it persists.
	Now() time.Time
}

// Transactor runs fn in a single database transaction. Returning an error
// from fn rolls back every write made through the given Stores.
type Transactor interface {
	Stores
	InTransaction(ctx context.Context, fn func(stores Stores) error) error
}
