package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given DSN and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "ecoindex.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS samples (
	id          TEXT PRIMARY KEY,
	location_id TEXT NOT NULL,
	payload     TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS processed_samples (
	id          TEXT PRIMARY KEY,
	location_id TEXT NOT NULL,
	payload     TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_samples_location ON samples(location_id);
CREATE INDEX IF NOT EXISTS idx_processed_location ON processed_samples(location_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddSample(ctx context.Context, sample model.Sample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal sample")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO samples (id, location_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), sample.LocationID, string(payload), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: insert sample")
}

func (s *SQLiteStore) ListSamples(ctx context.Context) ([]model.Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM samples ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list samples")
	}
	defer rows.Close()

	var samples []model.Sample
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sample")
		}
		var sample model.Sample
		if err := json.Unmarshal([]byte(payload), &sample); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal sample")
		}
		samples = append(samples, sample)
	}
	return samples, eris.Wrap(rows.Err(), "sqlite: list samples iterate")
}

func (s *SQLiteStore) SaveProcessed(ctx context.Context, ps []model.ProcessedSample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM processed_samples`); err != nil {
		return eris.Wrap(err, "sqlite: clear processed")
	}

	now := time.Now().UTC()
	for _, p := range ps {
		payload, err := json.Marshal(p)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal processed")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO processed_samples (id, location_id, payload, created_at) VALUES (?, ?, ?, ?)`,
			uuid.New().String(), p.LocationID, string(payload), now,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert processed")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit processed")
}

func (s *SQLiteStore) ListProcessed(ctx context.Context) ([]model.ProcessedSample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM processed_samples ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list processed")
	}
	defer rows.Close()

	var ps []model.ProcessedSample
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan processed")
		}
		var p model.ProcessedSample
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal processed")
		}
		ps = append(ps, p)
	}
	return ps, eris.Wrap(rows.Err(), "sqlite: list processed iterate")
}
