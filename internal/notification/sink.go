package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/antonminaichev/foodflow/internal/types/notification"
)

// Sink stores notifications and forwards them to an optional publisher.
type Sink struct {
	repo      NotificationRepository
	publisher Publisher
	log       *zap.Logger
}

func NewSink(repo NotificationRepository, publisher Publisher, log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{repo: repo, publisher: publisher, log: log}
}

func (s *Sink) Notify(ctx context.Context, n *notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return err
	}
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.log.Warn("notification publish failed",
			zap.String("notification", n.ID),
			zap.String("user", n.UserID),
			zap.Error(err),
		)
	}
	return nil
}
