package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/georgysavva/scany/sqlscan"

	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/types/order"
)

const orderColumns = `id, donation_id, receiver_id, volunteer_id, status, claimed_at, delivered_at, created_at`

func (s *PostgresStorage) ClaimDonation(ctx context.Context, t donation.Transition, o *order.Order) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, transitionQuery, transitionArgs(t)...)
		if err != nil {
			return fmt.Errorf("claim donation: %w", err)
		}
		if err := expectOne(res, storage.ErrConflict); err != nil {
			return err
		}
		q := `INSERT INTO orders (` + orderColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
		_, err = tx.ExecContext(ctx, q,
			o.ID, o.DonationID, o.ReceiverID, o.VolunteerID, string(o.Status), o.ClaimedAt, o.DeliveredAt, o.CreatedAt,
		)
		if pgCode(err) == codeUniqueViolation {
			return storage.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
}

func (s *PostgresStorage) getOrder(ctx context.Context, where string, arg string) (*order.Order, error) {
	var o order.Order
	if err := sqlscan.Get(ctx, s.db, &o, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg); err != nil {
		if sqlscan.NotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (s *PostgresStorage) FindOrderByID(ctx context.Context, id string) (*order.Order, error) {
	return s.getOrder(ctx, `id = $1`, id)
}

func (s *PostgresStorage) FindOrderByDonation(ctx context.Context, donationID string) (*order.Order, error) {
	return s.getOrder(ctx, `donation_id = $1`, donationID)
}

func (s *PostgresStorage) selectOrders(ctx context.Context, where string, args ...interface{}) ([]order.Order, error) {
	var out []order.Order
	q := `SELECT ` + orderColumns + ` FROM orders WHERE ` + where + ` ORDER BY created_at DESC`
	if err := sqlscan.Select(ctx, s.db, &out, q, args...); err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	return out, nil
}

func (s *PostgresStorage) ListOrdersByReceiver(ctx context.Context, receiverID string) ([]order.Order, error) {
	return s.selectOrders(ctx, `receiver_id = $1`, receiverID)
}

func (s *PostgresStorage) ListOrdersByVolunteer(ctx context.Context, volunteerID string) ([]order.Order, error) {
	return s.selectOrders(ctx, `volunteer_id = $1`, volunteerID)
}

func (s *PostgresStorage) ListAvailableOrders(ctx context.Context) ([]order.Order, error) {
	return s.selectOrders(ctx, `status = $1 AND volunteer_id IS NULL`, string(order.StatusClaimed))
}

func (s *PostgresStorage) AssignVolunteer(ctx context.Context, orderID, volunteerID string) error {
	q := `
        UPDATE orders SET volunteer_id = $2, status = $3
        WHERE id = $1 AND status = $4 AND volunteer_id IS NULL`
	res, err := s.db.ExecContext(ctx, q, orderID, volunteerID, string(order.StatusInTransit), string(order.StatusClaimed))
	if err != nil {
		return fmt.Errorf("assign volunteer: %w", err)
	}
	return expectOne(res, storage.ErrConflict)
}

func (s *PostgresStorage) AdvanceOrder(ctx context.Context, orderID string, from, to order.OrderStatus, at time.Time) error {
	q := `
        UPDATE orders SET status = $2,
            delivered_at = CASE WHEN $2 = 'delivered' THEN $4::timestamptz ELSE delivered_at END
        WHERE id = $1 AND status = $3`
	res, err := s.db.ExecContext(ctx, q, orderID, string(to), string(from), at)
	if err != nil {
		return fmt.Errorf("advance order: %w", err)
	}
	return expectOne(res, storage.ErrConflict)
}

func (s *PostgresStorage) MarkOrderDelivered(ctx context.Context, orderID string, at time.Time) error {
	q := `
        UPDATE orders SET status = $2, delivered_at = $3
        WHERE id = $1 AND status IN ($4, $5)`
	res, err := s.db.ExecContext(ctx, q, orderID, string(order.StatusDelivered), at,
		string(order.StatusClaimed), string(order.StatusInTransit))
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	return expectOne(res, storage.ErrConflict)
}

func (s *PostgresStorage) ConfirmOrder(ctx context.Context, orderID, donationID string, at time.Time) (bool, error) {
	var cascaded bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
			orderID, string(order.StatusConfirmed), string(order.StatusDelivered))
		if err != nil {
			return fmt.Errorf("confirm order: %w", err)
		}
		if err := expectOne(res, storage.ErrConflict); err != nil {
			return err
		}
		// the claimant may have confirmed the donation already
		res, err = tx.ExecContext(ctx, transitionQuery, transitionArgs(donation.Transition{
			DonationID:  donationID,
			From:        donation.StatusClaimed,
			To:          donation.StatusConfirmed,
			ConfirmedAt: &at,
		})...)
		if err != nil {
			return fmt.Errorf("confirm donation: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		cascaded = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return cascaded, nil
}
