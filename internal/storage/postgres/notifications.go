package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/sqlscan"

	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/notification"
)

const notificationColumns = `id, user_id, message, type, is_read, created_at,
    target_donation_id, target_donation_title, target_donation_image`

func (s *PostgresStorage) CreateNotification(ctx context.Context, n *notification.Notification) error {
	q := `INSERT INTO notifications (` + notificationColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := s.db.ExecContext(ctx, q,
		n.ID, n.UserID, n.Message, n.Type, n.IsRead, n.CreatedAt,
		n.TargetDonationID, n.TargetDonationTitle, n.TargetDonationImage,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListNotificationsByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	var out []notification.Notification
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	if err := sqlscan.Select(ctx, s.db, &out, q, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresStorage) MarkNotificationRead(ctx context.Context, id, userID string) (*notification.Notification, error) {
	var n notification.Notification
	q := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2 RETURNING ` + notificationColumns
	if err := sqlscan.Get(ctx, s.db, &n, q, id, userID); err != nil {
		if sqlscan.NotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &n, nil
}

func (s *PostgresStorage) DeleteNotification(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return expectOne(res, storage.ErrNotFound)
}
