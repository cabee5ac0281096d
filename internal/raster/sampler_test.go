package raster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/bluewater-labs/ecoindex/internal/engine"
	"github.com/bluewater-labs/ecoindex/internal/model"
)

// uniformSource builds a w×h MemSource where every band holds a constant
// value everywhere.
func uniformSource(t *testing.T, w, h int, values map[string]float64) *MemSource {
	t.Helper()
	pixels := make(map[string][]float64, len(values))
	var order []string
	for _, b := range ElementBands {
		v, ok := values[b]
		if !ok {
			continue
		}
		grid := make([]float64, w*h)
		for i := range grid {
			grid[i] = v
		}
		pixels[b] = grid
		order = append(order, b)
	}
	src, err := NewMemSource(w, h, [6]float64{-74.0, 0.01, 0, 40.7, 0, -0.01}, order, pixels)
	require.NoError(t, err)
	return src
}

func allBandValues() map[string]float64 {
	values := make(map[string]float64, len(ElementBands))
	for _, b := range ElementBands {
		values[b] = 0.005
	}
	values["Fe"] = 2.5
	return values
}

func TestSampler_UniformGrid(t *testing.T) {
	src := uniformSource(t, 20, 20, allBandValues())

	sp, err := NewSampler(10, engine.StandardDefaults)
	require.NoError(t, err)

	fc, err := sp.Sample(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, fc.Features, 4)

	// Grid positions (row, col): (0,0), (0,10), (10,0), (10,10).
	wantCoords := [][2]int{{0, 0}, {0, 10}, {10, 0}, {10, 10}}
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(*geom.Point)
		require.True(t, ok)
		row, col := wantCoords[i][0], wantCoords[i][1]
		wantLon, wantLat := src.Geo(col, row)
		assert.InDelta(t, wantLon, pt.X(), 1e-9)
		assert.InDelta(t, wantLat, pt.Y(), 1e-9)
	}

	// All cells share the same inputs, so every feature carries identical
	// indicator values.
	first := fc.Features[0].Properties["indicators"].(map[string]any)
	require.Len(t, first, len(engine.Kinds))
	for _, f := range fc.Features[1:] {
		assert.Equal(t, first, f.Properties["indicators"])
	}

	// Fe is 2.5 everywhere, so sediment deposition is 50.
	assert.InDelta(t, 50.0, first[string(engine.KindSedimentDeposition)].(float64), 1e-9)

	conc := fc.Features[0].Properties["concentrations"].(map[string]any)
	require.Len(t, conc, len(ElementBands))
	assert.InDelta(t, 2.5, conc["Fe"].(float64), 1e-9)
}

func TestSampler_StrideLargerThanRaster(t *testing.T) {
	src := uniformSource(t, 5, 5, allBandValues())

	sp, err := NewSampler(10, engine.StandardDefaults)
	require.NoError(t, err)

	fc, err := sp.Sample(context.Background(), src)
	require.NoError(t, err)
	// Only the origin cell is sampled.
	require.Len(t, fc.Features, 1)
}

func TestNewSampler_RejectsNonPositiveStride(t *testing.T) {
	for _, stride := range []int{0, -1, -10} {
		_, err := NewSampler(stride, engine.StandardDefaults)
		require.Error(t, err, "stride %d", stride)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	}
}

func TestSampler_MissingRequiredBandFails(t *testing.T) {
	values := allBandValues()
	delete(values, "Hg") // required by the engine
	src := uniformSource(t, 20, 20, values)

	sp, err := NewSampler(10, engine.StandardDefaults)
	require.NoError(t, err)

	_, err = sp.Sample(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSampler_NoBandsFails(t *testing.T) {
	src, err := NewMemSource(4, 4, [6]float64{0, 1, 0, 0, 0, -1}, nil, map[string][]float64{})
	require.NoError(t, err)

	sp, err := NewSampler(1, engine.StandardDefaults)
	require.NoError(t, err)

	_, err = sp.Sample(context.Background(), src)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSampler_Cancellation(t *testing.T) {
	src := uniformSource(t, 20, 20, allBandValues())

	sp, err := NewSampler(1, engine.StandardDefaults)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sp.Sample(ctx, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemSource_Geo(t *testing.T) {
	src := uniformSource(t, 20, 20, allBandValues())

	// Pixel centers: origin cell maps half a pixel in from the corner.
	lon, lat := src.Geo(0, 0)
	assert.InDelta(t, -74.0+0.005, lon, 1e-9)
	assert.InDelta(t, 40.7-0.005, lat, 1e-9)

	lon, lat = src.Geo(10, 10)
	assert.InDelta(t, -74.0+0.105, lon, 1e-9)
	assert.InDelta(t, 40.7-0.105, lat, 1e-9)
}

func TestNewMemSource_Validation(t *testing.T) {
	_, err := NewMemSource(4, 4, [6]float64{}, []string{"As"}, map[string][]float64{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = NewMemSource(4, 4, [6]float64{}, []string{"As"}, map[string][]float64{"As": make([]float64, 3)})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
