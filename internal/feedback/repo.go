package feedback

import (
	"context"

	"github.com/antonminaichev/foodflow/internal/types/feedback"
)

type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, f *feedback.Feedback) error
	ListFeedbackByTarget(ctx context.Context, targetID string) ([]feedback.Feedback, error)
}
