package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/sqlscan"

	"github.com/antonminaichev/foodflow/internal/storage"
	"github.com/antonminaichev/foodflow/internal/types/user"
	"github.com/antonminaichev/foodflow/internal/util/geo"
)

const userColumns = `id, name, email, password_hash, role, profile_pic, mobile_number,
    location_lat, location_lng, created_at, updated_at`

type userRow struct {
	user.User
	LocationLat *float64 `db:"location_lat"`
	LocationLng *float64 `db:"location_lng"`
}

func (r *userRow) toUser() *user.User {
	u := r.User
	if r.LocationLat != nil && r.LocationLng != nil {
		u.Location = &geo.Point{Lat: *r.LocationLat, Lng: *r.LocationLng}
	}
	return &u
}

func (s *PostgresStorage) CreateUser(ctx context.Context, u *user.User) error {
	var lat, lng *float64
	if u.Location != nil {
		lat, lng = &u.Location.Lat, &u.Location.Lng
	}
	q := `
        INSERT INTO users (id, name, email, password_hash, role, profile_pic, mobile_number,
            location_lat, location_lng, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := s.db.ExecContext(ctx, q,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.ProfilePic, u.MobileNumber,
		lat, lng, u.CreatedAt,
	)
	if pgCode(err) == codeUniqueViolation {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStorage) getUser(ctx context.Context, q string, args ...interface{}) (*user.User, error) {
	var row userRow
	if err := sqlscan.Get(ctx, s.db, &row, q, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toUser(), nil
}

func (s *PostgresStorage) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresStorage) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresStorage) UpdateUser(ctx context.Context, id string, upd user.Update) (*user.User, error) {
	var role *string
	if upd.Role != nil {
		r := string(*upd.Role)
		role = &r
	}
	var lat, lng *float64
	if upd.Location != nil {
		lat, lng = &upd.Location.Lat, &upd.Location.Lng
	}
	q := `
        UPDATE users SET
            name = COALESCE($2, name),
            role = COALESCE($3, role),
            profile_pic = COALESCE($4, profile_pic),
            mobile_number = COALESCE($5, mobile_number),
            location_lat = COALESCE($6, location_lat),
            location_lng = COALESCE($7, location_lng),
            password_hash = COALESCE($8, password_hash),
            updated_at = $9
        WHERE id = $1
        RETURNING ` + userColumns
	return s.getUser(ctx, q,
		id, upd.Name, role, upd.ProfilePic, upd.MobileNumber, lat, lng, upd.PasswordHash, upd.UpdatedAt,
	)
}

func (s *PostgresStorage) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOne(res, storage.ErrNotFound)
}

func (s *PostgresStorage) ListUsersByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	var rows []userRow
	q := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at`
	if err := sqlscan.Select(ctx, s.db, &rows, q, string(role)); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]user.User, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toUser())
	}
	return out, nil
}
