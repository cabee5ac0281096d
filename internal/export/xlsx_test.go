package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	require.NoError(t, err)

	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			cell := row.AddCell()
			switch val := v.(type) {
			case string:
				cell.SetString(val)
			case float64:
				cell.SetFloat(val)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestImportXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"location_id", "location_name", "latitude", "longitude", "water_body_type", "sample_date", "pH", "organic_matter", "As", "Pb", "notes"},
		{"loc-1", "Riverbank A", 40.7, -74.0, "River", "2025-04-01", 6.5, 4.0, 0.01, 0.02, "upstream of outfall"},
		{"loc-2", "Riverbank B", 40.8, -74.1, "River", "2025-04-01", 7.1, 3.2, 0.02, 0.03, ""},
	})

	samples, err := ImportXLSX(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	s := samples[0]
	assert.Equal(t, "loc-1", s.LocationID)
	assert.Equal(t, "Riverbank A", s.LocationName)
	assert.InDelta(t, 40.7, s.Latitude, 1e-9)
	assert.InDelta(t, -74.0, s.Longitude, 1e-9)
	assert.Equal(t, "River", s.WaterBodyType)
	assert.Equal(t, "2025-04-01", s.SampleDate)

	// Chemistry headers land in Chemistry, the rest in Concentrations.
	require.Contains(t, s.Chemistry, "pH")
	assert.InDelta(t, 6.5, *s.Chemistry["pH"].Value, 1e-9)
	require.Contains(t, s.Chemistry, "organic_matter")
	assert.InDelta(t, 4.0, *s.Chemistry["organic_matter"].Value, 1e-9)
	assert.InDelta(t, 0.01, s.Concentrations["As"], 1e-9)
	assert.InDelta(t, 0.02, s.Concentrations["Pb"], 1e-9)

	// Non-numeric extras become unmeasured notes.
	require.Contains(t, s.AdditionalParameters, "notes")
	assert.False(t, s.AdditionalParameters["notes"].Measured)
	assert.Equal(t, "upstream of outfall", s.AdditionalParameters["notes"].Description)

	assert.Equal(t, "loc-2", samples[1].LocationID)
	assert.NotContains(t, samples[1].AdditionalParameters, "notes")
}

func TestImportXLSX_NormalizesNames(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"location_id", "location_name"},
		{"loc-1", "Lac Caché"}, // decomposed accent
	})

	samples, err := ImportXLSX(path)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "Lac Caché", samples[0].LocationName)
}

func TestImportXLSX_MissingLocationID(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"location_id", "As"},
		{"", 0.01},
	})

	_, err := ImportXLSX(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestImportXLSX_BadCoordinate(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"location_id", "latitude"},
		{"loc-1", "north-ish"},
	})

	_, err := ImportXLSX(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestImportXLSX_HeaderOnly(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"location_id", "As"},
	})

	_, err := ImportXLSX(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestImportXLSX_MissingFile(t *testing.T) {
	_, err := ImportXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
