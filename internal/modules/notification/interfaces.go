package notification

import (
	"context"
	"time"

	"tourbook/internal/domain"
)

// Store is the persisted-notification side of the fan-out engine.
// Implemented by repository.NotificationRepository.
type Store interface {
	CreateBatch(ctx context.Context, ns []domain.Notification) error
	GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int64, error)
	DeleteReadOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Pusher is the real-time side channel. Implemented by realtime.Hub.
// Pushes are fire-and-forget; an offline client recovers via the pull API.
type Pusher interface {
	EmitToUser(userID int64, event string, payload any)
}
