package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"rentalhub/internal/domain/repository"
)

// GormStore hands out gorm-backed repositories that share one connection
// pool, or one transaction when obtained through InTransaction.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

type Option func(*GormStore)

// WithClock overrides the time source used for createdAt/seenAt/readAt.
func WithClock(now func() time.Time) Option {
	return func(s *GormStore) {
		s.now = now
	}
}

func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	s := &GormStore{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GormStore) Chats() repository.ChatRepository {
	return &gormChatRepository{db: s.db, now: s.timestamp}
}

func (s *GormStore) Notifications() repository.NotificationRepository {
	return &gormNotificationRepository{db: s.db, now: s.timestamp}
}

func (s *GormStore) Interactions() repository.InteractionRepository {
	return &gormInteractionRepository{db: s.db, now: s.timestamp}
}

func (s *GormStore) InTransaction(ctx context.Context, fn func(stores repository.Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, now: s.now})
	})
}

func (s *GormStore) Now() time.Time {
	return s.timestamp()
}

// timestamp is UTC with microsecond precision, the finest resolution
// Postgres keeps.
func (s *GormStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
