// Package store persists raw and processed water samples. Three drivers are
// available: flat JSON files matching the legacy layout, SQLite for a single
// node, and Postgres when more than one writer is expected.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/bluewater-labs/ecoindex/internal/config"
	"github.com/bluewater-labs/ecoindex/internal/model"
)

// Store defines the persistence interface for the batch sample pipeline.
type Store interface {
	// Raw samples
	AddSample(ctx context.Context, s model.Sample) error
	ListSamples(ctx context.Context) ([]model.Sample, error)

	// Processed samples; SaveProcessed replaces the previous processed set.
	SaveProcessed(ctx context.Context, ps []model.ProcessedSample) error
	ListProcessed(ctx context.Context) ([]model.ProcessedSample, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFile(cfg.Path), nil
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
