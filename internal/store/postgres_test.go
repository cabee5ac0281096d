package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgres_Migrate(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS samples").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AddSample(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO samples").
		WithArgs(pgxmock.AnyArg(), "a", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.AddSample(context.Background(), testSample("a")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListSamples(t *testing.T) {
	st, mock := newMockStore(t)

	payload, err := json.Marshal(testSample("a"))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload FROM samples").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	samples, err := st.ListSamples(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "a", samples[0].LocationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveProcessed(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM processed_samples").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO processed_samples").
		WithArgs(pgxmock.AnyArg(), "a", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	ps := []model.ProcessedSample{{Sample: testSample("a")}}
	require.NoError(t, st.SaveProcessed(context.Background(), ps))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveProcessedRollsBackOnError(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM processed_samples").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := st.SaveProcessed(context.Background(), nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
