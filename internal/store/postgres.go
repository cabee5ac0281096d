package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using a pgx connection pool with JSONB
// payload columns.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects a pool to the given connection string.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS samples (
	id          UUID PRIMARY KEY,
	location_id TEXT NOT NULL,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS processed_samples (
	id          UUID PRIMARY KEY,
	location_id TEXT NOT NULL,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_samples_location ON samples(location_id);
CREATE INDEX IF NOT EXISTS idx_processed_location ON processed_samples(location_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) AddSample(ctx context.Context, sample model.Sample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal sample")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO samples (id, location_id, payload, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), sample.LocationID, payload, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: insert sample")
}

func (s *PostgresStore) ListSamples(ctx context.Context) ([]model.Sample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM samples ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list samples")
	}
	defer rows.Close()

	var samples []model.Sample
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sample")
		}
		var sample model.Sample
		if err := json.Unmarshal(payload, &sample); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal sample")
		}
		samples = append(samples, sample)
	}
	return samples, eris.Wrap(rows.Err(), "postgres: list samples iterate")
}

func (s *PostgresStore) SaveProcessed(ctx context.Context, ps []model.ProcessedSample) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM processed_samples`); err != nil {
		return eris.Wrap(err, "postgres: clear processed")
	}

	now := time.Now().UTC()
	for _, p := range ps {
		payload, err := json.Marshal(p)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal processed")
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO processed_samples (id, location_id, payload, created_at) VALUES ($1, $2, $3, $4)`,
			uuid.New().String(), p.LocationID, payload, now,
		); err != nil {
			return eris.Wrap(err, "postgres: insert processed")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit processed")
}

func (s *PostgresStore) ListProcessed(ctx context.Context) ([]model.ProcessedSample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM processed_samples ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list processed")
	}
	defer rows.Close()

	var ps []model.ProcessedSample
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan processed")
		}
		var p model.ProcessedSample
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal processed")
		}
		ps = append(ps, p)
	}
	return ps, eris.Wrap(rows.Err(), "postgres: list processed iterate")
}
