package usecase

import (
	"context"
	"time"

	"rentalhub/internal/infrastructure/taskqueue"
)

// Publisher is the realtime hub as seen by the use cases.
type Publisher interface {
	Join(connectionID, channel string)
	Leave(connectionID, channel string)
	Publish(channel, event string, data interface{}, exceptConnectionID string)
}

// TaskEnqueuer runs secondary effects after a commit. Tasks sharing a key run
// in enqueue order.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, key, name string, task taskqueue.Task) error
}

type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}

// Session identifies the connection and user an operation acts for. It is
// built from the verified token, never from request payloads.
type Session struct {
	ConnectionID string
	UserID       string
}
