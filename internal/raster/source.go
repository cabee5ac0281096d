// Package raster samples multi-band geospatial rasters into point feature
// collections, running the indicator engine once per sampled grid cell.
package raster

import (
	"github.com/rotisserie/eris"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

// ElementBands is the canonical band order for concentration rasters. A
// raster without band naming metadata is interpreted positionally against
// this list.
var ElementBands = []string{
	"As", "Pb", "Cd", "Cr", "Hg", "Ni", "Cu", "Zn",
	"Fe", "Se", "Al", "B", "Ba", "Ag", "Mo", "Sb",
}

// Source is a read-only view over a multi-band raster. Bands are addressed
// by element symbol, never by position, so a reordered or over-provisioned
// raster cannot silently misalign concentrations.
type Source interface {
	// Width and Height are the raster dimensions in pixels.
	Width() int
	Height() int
	// Bands returns the ordered band names.
	Bands() []string
	// Read returns the pixel value of the named band at (col, row).
	Read(band string, col, row int) (float64, error)
	// Geo maps pixel (col, row) to geographic (lon, lat) via the raster's
	// affine transform.
	Geo(col, row int) (lon, lat float64)
	Close() error
}

// MemSource is an in-memory Source backed by per-band pixel grids. Used by
// tests and for synthetic fixtures.
type MemSource struct {
	W, H      int
	Transform [6]float64 // GDAL-style affine: origin + pixel size + rotation
	Pixels    map[string][]float64
	order     []string
}

// NewMemSource builds a MemSource with the given band order. Each band grid
// must hold w*h values in row-major order.
func NewMemSource(w, h int, transform [6]float64, bands []string, pixels map[string][]float64) (*MemSource, error) {
	for _, b := range bands {
		grid, ok := pixels[b]
		if !ok {
			return nil, eris.Wrapf(model.ErrInvalidInput, "raster: band %q has no pixel grid", b)
		}
		if len(grid) != w*h {
			return nil, eris.Wrapf(model.ErrInvalidInput, "raster: band %q has %d pixels, want %d", b, len(grid), w*h)
		}
	}
	return &MemSource{W: w, H: h, Transform: transform, Pixels: pixels, order: bands}, nil
}

func (m *MemSource) Width() int      { return m.W }
func (m *MemSource) Height() int     { return m.H }
func (m *MemSource) Bands() []string { return m.order }
func (m *MemSource) Close() error    { return nil }

func (m *MemSource) Read(band string, col, row int) (float64, error) {
	grid, ok := m.Pixels[band]
	if !ok {
		return 0, eris.Wrapf(model.ErrInvalidInput, "raster: unknown band %q", band)
	}
	if col < 0 || col >= m.W || row < 0 || row >= m.H {
		return 0, eris.Wrapf(model.ErrInvalidInput, "raster: pixel (%d,%d) out of bounds", col, row)
	}
	return grid[row*m.W+col], nil
}

func (m *MemSource) Geo(col, row int) (lon, lat float64) {
	return applyTransform(m.Transform, col, row)
}

// applyTransform evaluates a GDAL-style geotransform at the pixel center.
func applyTransform(gt [6]float64, col, row int) (lon, lat float64) {
	x := float64(col) + 0.5
	y := float64(row) + 0.5
	lon = gt[0] + x*gt[1] + y*gt[2]
	lat = gt[3] + x*gt[4] + y*gt[5]
	return lon, lat
}
