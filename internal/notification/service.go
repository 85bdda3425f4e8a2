package notification

import (
	"context"
	"errors"
	"strings"

	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/notification"
)

var (
	ErrMissingFields        = errors.New("user and message are required")
	ErrNotificationNotFound = errors.New("notification not found")
)

type Service struct {
	repo NotificationRepository
	sink *Sink
}

func NewService(repo NotificationRepository, sink *Sink) *Service {
	return &Service{repo: repo, sink: sink}
}

type CreateInput struct {
	UserID              string
	Message             string
	Type                string
	TargetDonationID    *string
	TargetDonationTitle *string
	TargetDonationImage *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*notification.Notification, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, ErrMissingFields
	}
	n := &notification.Notification{
		UserID:              in.UserID,
		Message:             in.Message,
		Type:                in.Type,
		TargetDonationID:    in.TargetDonationID,
		TargetDonationTitle: in.TargetDonationTitle,
		TargetDonationImage: in.TargetDonationImage,
	}
	if n.Type == "" {
		n.Type = notification.TypeInfo
	}
	if err := s.sink.Notify(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]notification.Notification, error) {
	return s.repo.ListNotificationsByUser(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) (*notification.Notification, error) {
	n, err := s.repo.MarkNotificationRead(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotificationNotFound
	}
	return n, err
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	err := s.repo.DeleteNotification(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
