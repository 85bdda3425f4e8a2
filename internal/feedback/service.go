package feedback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antonminaichev/foodflow/internal/types/feedback"
)

var (
	ErrMissingFields = errors.New("target, type and rating are required")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

type Service struct {
	repo FeedbackRepository
}

func NewService(repo FeedbackRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Leave(ctx context.Context, userID string, req *feedback.LeaveRequest) (*feedback.Feedback, error) {
	if req.Target == nil || strings.TrimSpace(*req.Target) == "" ||
		req.Type == nil || strings.TrimSpace(*req.Type) == "" || req.Rating == nil {
		return nil, ErrMissingFields
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	f := &feedback.Feedback{
		ID:        uuid.NewString(),
		UserID:    userID,
		TargetID:  *req.Target,
		Type:      *req.Type,
		Rating:    *req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateFeedback(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) ListForTarget(ctx context.Context, targetID string) ([]feedback.Feedback, error) {
	return s.repo.ListFeedbackByTarget(ctx, targetID)
}
