package sessionrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/sunday/internal/domain/session"
)

// PostgresRepository persists finished sessions in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save inserts the record; saving the same session twice keeps the first copy.
func (r *PostgresRepository) Save(ctx context.Context, rec session.Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO exposure_sessions (id, profile_id, lat, lon, started_at, ended_at, total_iu, peak_uv, last_uv_index, last_rate_iu_per_minute, ticks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.ProfileID, rec.Latitude, rec.Longitude, rec.StartedAt, rec.EndedAt, rec.TotalIU, rec.PeakUV, rec.LastUVIndex, rec.LastRateIUPerMinute, rec.Ticks)
	return err
}

// ListBetween returns sessions started within [from, to), oldest first.
func (r *PostgresRepository) ListBetween(ctx context.Context, profileID string, from, to time.Time) ([]session.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, profile_id, lat, lon, started_at, ended_at, total_iu, peak_uv, last_uv_index, last_rate_iu_per_minute, ticks
		FROM exposure_sessions
		WHERE profile_id = $1 AND started_at >= $2 AND started_at < $3
		ORDER BY started_at
	`, profileID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []session.Record
	for rows.Next() {
		var rec session.Record
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &rec.Latitude, &rec.Longitude, &rec.StartedAt, &rec.EndedAt, &rec.TotalIU, &rec.PeakUV, &rec.LastUVIndex, &rec.LastRateIUPerMinute, &rec.Ticks); err != nil {
			return nil, err
		}
		rec.StartedAt = rec.StartedAt.UTC()
		rec.EndedAt = rec.EndedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ session.Repository = (*PostgresRepository)(nil)
