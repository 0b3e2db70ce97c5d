package profilerepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/sunday/internal/domain/exposure"
	"github.com/yanqian/sunday/internal/domain/profile"
)

// PostgresRepository persists profiles in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new profile row.
func (r *PostgresRepository) Create(ctx context.Context, p profile.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (id, skin_type, clothing_level, age_years, adaptation_factor, daily_goal_iu, secret_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, int(p.SkinType), string(p.ClothingLevel), p.AgeYears, p.AdaptationFactor, p.DailyGoalIU, p.SecretHash, p.CreatedAt, p.UpdatedAt)
	return err
}

// Get fetches by primary key.
func (r *PostgresRepository) Get(ctx context.Context, id string) (profile.Profile, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, skin_type, clothing_level, age_years, adaptation_factor, daily_goal_iu, secret_hash, created_at, updated_at
		FROM profiles
		WHERE id = $1
		LIMIT 1
	`, id)
	if err != nil {
		return profile.Profile{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return profile.Profile{}, false, rows.Err()
	}
	p, err := scanProfile(rows)
	if err != nil {
		return profile.Profile{}, false, err
	}
	return p, true, rows.Err()
}

// Update replaces the mutable preference columns.
func (r *PostgresRepository) Update(ctx context.Context, p profile.Profile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET skin_type = $2, clothing_level = $3, age_years = $4, adaptation_factor = $5, daily_goal_iu = $6, updated_at = $7
		WHERE id = $1
	`, p.ID, int(p.SkinType), string(p.ClothingLevel), p.AgeYears, p.AdaptationFactor, p.DailyGoalIU, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (profile.Profile, error) {
	var (
		p                profile.Profile
		skin             int
		clothing         string
		created, updated time.Time
	)
	if err := row.Scan(&p.ID, &skin, &clothing, &p.AgeYears, &p.AdaptationFactor, &p.DailyGoalIU, &p.SecretHash, &created, &updated); err != nil {
		return profile.Profile{}, err
	}
	p.SkinType = exposure.SkinType(skin)
	p.ClothingLevel = exposure.ClothingLevel(clothing)
	p.CreatedAt = created.UTC()
	p.UpdatedAt = updated.UTC()
	return p, nil
}

var _ profile.Repository = (*PostgresRepository)(nil)
