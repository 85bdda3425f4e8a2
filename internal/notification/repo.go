package notification

import (
	"context"

	"github.com/antonminaichev/foodflow/internal/types/notification"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *notification.Notification) error
	ListNotificationsByUser(ctx context.Context, userID string) ([]notification.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (*notification.Notification, error)
	DeleteNotification(ctx context.Context, id, userID string) error
}

// Publisher ships a stored notification to an external channel.
type Publisher interface {
	Publish(ctx context.Context, n *notification.Notification) error
}
