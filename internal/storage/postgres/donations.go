package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/sqlscan"

	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/donation"
	"github.com/antonminaichev/foodflow/internal/util/geo"
)

const donationSelect = `
    SELECT d.id, d.donor_id, d.description, d.quantity, d.pickup_lat, d.pickup_lng, d.image,
        d.status, d.expires_at, d.created_at, d.claimed_by, d.claimed_at, d.confirmed_at,
        COALESCE((
            SELECT json_agg(json_build_object('userId', r.rater_id, 'value', r.value) ORDER BY r.created_at)
            FROM donation_ratings r WHERE r.donation_id = d.id
        ), '[]'::json) AS ratings
    FROM donations d`

// ratingList scans the json_agg column of donationSelect.
type ratingList []donation.Rating

func (l *ratingList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("ratings: unsupported column type %T", src)
	}
	return json.Unmarshal(raw, (*[]donation.Rating)(l))
}

type donationRow struct {
	ID          string     `db:"id"`
	DonorID     string     `db:"donor_id"`
	Description string     `db:"description"`
	Quantity    string     `db:"quantity"`
	PickupLat   float64    `db:"pickup_lat"`
	PickupLng   float64    `db:"pickup_lng"`
	Image       string     `db:"image"`
	Status      string     `db:"status"`
	ExpiresAt   time.Time  `db:"expires_at"`
	CreatedAt   time.Time  `db:"created_at"`
	ClaimedBy   *string    `db:"claimed_by"`
	ClaimedAt   *time.Time `db:"claimed_at"`
	ConfirmedAt *time.Time `db:"confirmed_at"`
	Ratings     ratingList `db:"ratings"`
}

func (r *donationRow) toDonation() donation.Donation {
	ratings := []donation.Rating(r.Ratings)
	if ratings == nil {
		ratings = []donation.Rating{}
	}
	return donation.Donation{
		ID:          r.ID,
		DonorID:     r.DonorID,
		Description: r.Description,
		Quantity:    r.Quantity,
		Location:    geo.Point{Lat: r.PickupLat, Lng: r.PickupLng},
		Image:       r.Image,
		Status:      donation.Status(r.Status),
		ExpiresAt:   r.ExpiresAt.UTC(),
		CreatedAt:   r.CreatedAt.UTC(),
		ClaimedBy:   r.ClaimedBy,
		ClaimedAt:   r.ClaimedAt,
		ConfirmedAt: r.ConfirmedAt,
		Ratings:     ratings,
	}
}

func (s *PostgresStorage) selectDonations(ctx context.Context, where string, args ...interface{}) ([]donation.Donation, error) {
	var rows []donationRow
	if err := sqlscan.Select(ctx, s.db, &rows, donationSelect+" "+where, args...); err != nil {
		return nil, fmt.Errorf("select donations: %w", err)
	}
	out := make([]donation.Donation, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDonation())
	}
	return out, nil
}

func (s *PostgresStorage) CreateDonation(ctx context.Context, d *donation.Donation) error {
	q := `
        INSERT INTO donations (id, donor_id, description, quantity, pickup_lat, pickup_lng, image,
            status, expires_at, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := s.db.ExecContext(ctx, q,
		d.ID, d.DonorID, d.Description, d.Quantity, d.Location.Lat, d.Location.Lng, d.Image,
		string(d.Status), d.ExpiresAt, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (s *PostgresStorage) FindDonationByID(ctx context.Context, id string) (*donation.Donation, error) {
	var row donationRow
	if err := sqlscan.Get(ctx, s.db, &row, donationSelect+` WHERE d.id = $1`, id); err != nil {
		if sqlscan.NotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get donation: %w", err)
	}
	d := row.toDonation()
	return &d, nil
}

func (s *PostgresStorage) FindDonationsByIDs(ctx context.Context, ids []string) ([]donation.Donation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.selectDonations(ctx, `WHERE d.id = ANY($1)`, ids)
}

func (s *PostgresStorage) ListDonationsByStatus(ctx context.Context, status donation.Status) ([]donation.Donation, error) {
	return s.selectDonations(ctx, `WHERE d.status = $1 ORDER BY d.created_at DESC`, string(status))
}

func (s *PostgresStorage) ListDonationsByDonor(ctx context.Context, donorID string, statuses ...donation.Status) ([]donation.Donation, error) {
	if len(statuses) == 0 {
		return s.selectDonations(ctx, `WHERE d.donor_id = $1 ORDER BY d.created_at DESC`, donorID)
	}
	st := make([]string, len(statuses))
	for i, v := range statuses {
		st[i] = string(v)
	}
	return s.selectDonations(ctx,
		`WHERE d.donor_id = $1 AND d.status = ANY($2) ORDER BY d.created_at DESC`, donorID, st)
}

// transitionQuery is the single conditional update behind every donation
// status change. $7 is the optional deadline guard.
const transitionQuery = `
    UPDATE donations SET
        status = $2,
        claimed_by = COALESCE($3, claimed_by),
        claimed_at = COALESCE($4, claimed_at),
        confirmed_at = COALESCE($5, confirmed_at)
    WHERE id = $1 AND status = $6 AND ($7::timestamptz IS NULL OR expires_at > $7)`

func transitionArgs(t donation.Transition) []interface{} {
	return []interface{}{
		t.DonationID, string(t.To), t.ClaimedBy, t.ClaimedAt, t.ConfirmedAt, string(t.From), t.OpenAt,
	}
}

func (s *PostgresStorage) TransitionDonation(ctx context.Context, t donation.Transition) error {
	res, err := s.db.ExecContext(ctx, transitionQuery, transitionArgs(t)...)
	if err != nil {
		return fmt.Errorf("transition donation: %w", err)
	}
	return expectOne(res, storage.ErrConflict)
}

func (s *PostgresStorage) EditDonation(ctx context.Context, id, donorID string, e donation.Edit) error {
	q := `
        UPDATE donations SET
            description = COALESCE($3, description),
            quantity = COALESCE($4, quantity),
            image = COALESCE($5, image),
            expires_at = COALESCE($6, expires_at)
        WHERE id = $1 AND donor_id = $2`
	res, err := s.db.ExecContext(ctx, q, id, donorID, e.Description, e.Quantity, e.Image, e.ExpiresAt)
	if err != nil {
		return fmt.Errorf("edit donation: %w", err)
	}
	return expectOne(res, storage.ErrNotFound)
}

func (s *PostgresStorage) AddDonationRating(ctx context.Context, id string, r donation.Rating) error {
	q := `INSERT INTO donation_ratings (donation_id, rater_id, value, created_at) VALUES ($1,$2,$3,now())`
	_, err := s.db.ExecContext(ctx, q, id, r.RaterID, r.Value)
	switch pgCode(err) {
	case codeUniqueViolation:
		return storage.ErrDuplicate
	case codeForeignKeyViolation:
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteDonation(ctx context.Context, id, donorID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM donations WHERE id = $1 AND donor_id = $2`, id, donorID)
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	return expectOne(res, storage.ErrNotFound)
}

func (s *PostgresStorage) ExpirePendingDonations(ctx context.Context, now time.Time) (int64, error) {
	q := `UPDATE donations SET status = $1 WHERE status = $2 AND expires_at < $3`
	res, err := s.db.ExecContext(ctx, q, string(donation.StatusExpired), string(donation.StatusPending), now)
	if err != nil {
		return 0, fmt.Errorf("expire donations: %w", err)
	}
	return res.RowsAffected()
}

func (s *PostgresStorage) DeleteStaleDonations(ctx context.Context, now time.Time) (int64, error) {
	q := `DELETE FROM donations WHERE status IN ($1, $2) AND expires_at < $3`
	res, err := s.db.ExecContext(ctx, q, string(donation.StatusPending), string(donation.StatusExpired), now)
	if err != nil {
		return 0, fmt.Errorf("delete stale donations: %w", err)
	}
	return res.RowsAffected()
}
