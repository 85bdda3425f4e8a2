package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/sqlscan"

	"github.com/antonminaichev/foodflow/internal/types/feedback"
)

func (s *PostgresStorage) CreateFeedback(ctx context.Context, f *feedback.Feedback) error {
	q := `
        INSERT INTO feedback (id, user_id, target_id, type, rating, comment, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := s.db.ExecContext(ctx, q, f.ID, f.UserID, f.TargetID, f.Type, f.Rating, f.Comment, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListFeedbackByTarget(ctx context.Context, targetID string) ([]feedback.Feedback, error) {
	var out []feedback.Feedback
	q := `
        SELECT id, user_id, target_id, type, rating, comment, created_at
        FROM feedback WHERE target_id = $1 ORDER BY created_at DESC`
	if err := sqlscan.Select(ctx, s.db, &out, q, targetID); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return out, nil
}
