package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/antonminaichev/foodflow/internal/storage"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var _ storage.Storage = (*PostgresStorage)(nil)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	// проверяем, что БД жива
	if err := s.db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	// создаём таблицы
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// schema is applied in order at startup. Orders outlive their donation, so
// orders.donation_id carries no foreign key.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            profile_pic TEXT NOT NULL DEFAULT '',
            mobile_number TEXT NOT NULL DEFAULT '',
            location_lat DOUBLE PRECISION,
            location_lng DOUBLE PRECISION,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ
        )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (lower(email))`,
	`CREATE INDEX IF NOT EXISTS users_role_idx ON users (role)`,
	`CREATE TABLE IF NOT EXISTS donations (
            id TEXT PRIMARY KEY,
            donor_id TEXT NOT NULL,
            description TEXT NOT NULL,
            quantity TEXT NOT NULL,
            pickup_lat DOUBLE PRECISION NOT NULL,
            pickup_lng DOUBLE PRECISION NOT NULL,
            image TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            expires_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            claimed_by TEXT,
            claimed_at TIMESTAMPTZ,
            confirmed_at TIMESTAMPTZ
        )`,
	`CREATE INDEX IF NOT EXISTS donations_status_expires_idx ON donations (status, expires_at)`,
	`CREATE INDEX IF NOT EXISTS donations_donor_idx ON donations (donor_id)`,
	`CREATE TABLE IF NOT EXISTS donation_ratings (
            donation_id TEXT NOT NULL REFERENCES donations(id) ON DELETE CASCADE,
            rater_id TEXT NOT NULL,
            value SMALLINT NOT NULL CHECK (value BETWEEN 1 AND 5),
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (donation_id, rater_id)
        )`,
	`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            donation_id TEXT UNIQUE NOT NULL,
            receiver_id TEXT NOT NULL,
            volunteer_id TEXT,
            status TEXT NOT NULL,
            claimed_at TIMESTAMPTZ NOT NULL,
            delivered_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL
        )`,
	`ALTER TABLE orders DROP CONSTRAINT IF EXISTS orders_donation_id_fkey`,
	`CREATE TABLE IF NOT EXISTS notifications (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            message TEXT NOT NULL,
            type TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL,
            target_donation_id TEXT,
            target_donation_title TEXT,
            target_donation_image TEXT
        )`,
	`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS feedback (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            target_id TEXT NOT NULL,
            type TEXT NOT NULL,
            rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
            comment TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL
        )`,
}

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	for _, q := range schema {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// expectOne turns a conditional update that touched nothing into miss.
func expectOne(res sql.Result, miss error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return miss
	}
	return nil
}

// inTx runs fn in a transaction and commits when it returns nil.
func (s *PostgresStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
