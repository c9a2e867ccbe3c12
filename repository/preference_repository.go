package repository

import (
	"context"
	"errors"
	"fmt"

	"poporingbot/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is the subset of pgx used by repositories, satisfied by a pool or a transaction
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PreferenceRepository stores server preferences in Postgres
type PreferenceRepository struct {
	q Queryable
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *database.DB) *PreferenceRepository {
	return &PreferenceRepository{q: db.Pool}
}

// Get returns the region stored for a scope key
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT region
		FROM server_preferences
		WHERE scope_key = $1
	`

	var region string
	err := r.q.QueryRow(ctx, query, key).Scan(&region)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return region, true, nil
}

// Set upserts the region for a scope key
func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO server_preferences (scope_key, region, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (scope_key) DO UPDATE
		SET region = EXCLUDED.region,
		    updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}
