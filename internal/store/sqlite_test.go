package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_AddAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddSample(ctx, testSample("a")))
	require.NoError(t, st.AddSample(ctx, testSample("b")))

	samples, err := st.ListSamples(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "a", samples[0].LocationID)
	assert.Equal(t, "b", samples[1].LocationID)

	// Payload round-trips intact.
	require.NotNil(t, samples[0].Chemistry["pH"].Value)
	assert.Equal(t, 6.5, *samples[0].Chemistry["pH"].Value)
}

func TestSQLite_ListEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)

	samples, err := st.ListSamples(context.Background())
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestSQLite_SaveProcessedReplaces(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveProcessed(ctx, []model.ProcessedSample{
		{Sample: testSample("old"), DerivedIndices: model.DerivedIndices{SoilToxicity: 0.41}},
	}))
	require.NoError(t, st.SaveProcessed(ctx, []model.ProcessedSample{
		{Sample: testSample("new-1")},
		{Sample: testSample("new-2")},
	}))

	ps, err := st.ListProcessed(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "new-1", ps[0].LocationID)
	assert.Equal(t, "new-2", ps[1].LocationID)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}
