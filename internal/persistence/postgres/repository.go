// Package postgres provides pgx-backed persistence for the litterbox service.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/litterbox/internal/domain"
	"example.com/litterbox/internal/observability"
)

// Repository provides Postgres-backed persistence for accounts, cats,
// litterboxes, devices, and visit records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateUser persists a new account.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1,$2,$3,$4,$5)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateUser
	}
	return err
}

// UserByUsername returns the account with the given username, or nil.
func (r *Repository) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`,
		username,
	)
	var user domain.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether an account with the username or email exists.
func (r *Repository) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		username, email,
	).Scan(&exists)
	return exists, err
}

// CreateCat persists a new cat.
func (r *Repository) CreateCat(ctx context.Context, cat domain.Cat) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cats (id, owner_id, name, breed, age, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		cat.ID, cat.OwnerID, cat.Name, cat.Breed, cat.Age, cat.CreatedAt,
	)
	return err
}

// GetCat returns the cat with the given ID, or nil.
func (r *Repository) GetCat(ctx context.Context, id string) (*domain.Cat, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, breed, age, created_at FROM cats WHERE id = $1`,
		id,
	)
	var cat domain.Cat
	if err := row.Scan(&cat.ID, &cat.OwnerID, &cat.Name, &cat.Breed, &cat.Age, &cat.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// ListCatsByOwner returns the owner's cats ordered by creation time.
func (r *Repository) ListCatsByOwner(ctx context.Context, ownerID string) ([]domain.Cat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, name, breed, age, created_at FROM cats WHERE owner_id = $1 ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.Cat
	for rows.Next() {
		var cat domain.Cat
		if err := rows.Scan(&cat.ID, &cat.OwnerID, &cat.Name, &cat.Breed, &cat.Age, &cat.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// CreateLitterbox persists a new litterbox.
func (r *Repository) CreateLitterbox(ctx context.Context, box domain.Litterbox) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO litterboxes (id, cat_id, name, created_at) VALUES ($1,$2,$3,$4)`,
		box.ID, box.CatID, box.Name, box.CreatedAt,
	)
	return err
}

// GetLitterbox returns the litterbox with the given ID, or nil.
func (r *Repository) GetLitterbox(ctx context.Context, id string) (*domain.Litterbox, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, cat_id, name, created_at FROM litterboxes WHERE id = $1`,
		id,
	)
	var box domain.Litterbox
	if err := row.Scan(&box.ID, &box.CatID, &box.Name, &box.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &box, nil
}

// CreateEdgeDevice persists a vendor-assigned device registration.
func (r *Repository) CreateEdgeDevice(ctx context.Context, device domain.EdgeDevice) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO edge_devices (id, litterbox_id, name, device_type, created_at) VALUES ($1,$2,$3,$4,$5)`,
		device.ID, device.LitterboxID, device.DeviceName, device.DeviceType, device.CreatedAt,
	)
	return err
}

// ListUsageByCat returns derived visit records for all litterboxes attached
// to the cat within [start, end]. Duration and cat weight are computed from
// the raw readings; the stored box weight difference is the cat's weight.
func (r *Repository) ListUsageByCat(ctx context.Context, catID string, start, end time.Time, limit int) ([]domain.UsageRecord, error) {
	const query = `
        SELECT u.id,
               u.enter_time,
               u.exit_time,
               EXTRACT(EPOCH FROM (u.exit_time - u.enter_time)) / 60.0 AS duration_minutes,
               u.weight_enter - u.weight_exit AS cat_weight,
               d.name AS device_name,
               lb.name AS litterbox_name
        FROM litterbox_usage_data u
        JOIN litterboxes lb ON lb.id = u.litterbox_id
        JOIN edge_devices d ON d.id = u.device_id
        WHERE lb.cat_id = $1 AND u.enter_time BETWEEN $2 AND $3
        ORDER BY u.enter_time, u.id
        LIMIT $4`

	rows, err := r.pool.Query(ctx, query, catID, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.UsageRecord, 0, limit)
	var latest time.Time
	for rows.Next() {
		var rec domain.UsageRecord
		if err := rows.Scan(&rec.ID, &rec.EnterTime, &rec.ExitTime, &rec.DurationMinutes, &rec.CatWeight, &rec.DeviceName, &rec.LitterboxName); err != nil {
			return nil, err
		}
		if rec.ExitTime.After(latest) {
			latest = rec.ExitTime
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	observability.RecordUsageServed(latest)
	return records, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
