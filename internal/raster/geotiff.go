package raster

import (
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

var registerOnce sync.Once

// GeoTIFF is a Source backed by a GDAL dataset. Bands are mapped onto
// ElementBands positionally (concentration rasters in the field carry no
// band descriptions), so the dataset must have at least len(ElementBands)
// bands; extras are ignored.
type GeoTIFF struct {
	ds    *godal.Dataset
	w, h  int
	gt    [6]float64
	index map[string]int // element symbol -> zero-based band index
	order []string
}

// OpenGeoTIFF opens a raster file and validates that it carries enough bands
// for the canonical element list. An optional band order override replaces
// ElementBands for rasters produced with a different layout.
func OpenGeoTIFF(path string, bandOrder []string) (*GeoTIFF, error) {
	registerOnce.Do(godal.RegisterAll)

	if len(bandOrder) == 0 {
		bandOrder = ElementBands
	}

	ds, err := godal.Open(path)
	if err != nil {
		return nil, eris.Wrapf(model.ErrInvalidInput, "raster: open %s: %v", path, err)
	}

	st := ds.Structure()
	if st.NBands < len(bandOrder) {
		_ = ds.Close()
		return nil, eris.Wrapf(model.ErrInvalidInput,
			"raster: %s has %d bands, need %d", path, st.NBands, len(bandOrder))
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		_ = ds.Close()
		return nil, eris.Wrapf(model.ErrInvalidInput, "raster: %s has no geotransform: %v", path, err)
	}

	index := make(map[string]int, len(bandOrder))
	for i, sym := range bandOrder {
		index[sym] = i
	}

	return &GeoTIFF{
		ds:    ds,
		w:     st.SizeX,
		h:     st.SizeY,
		gt:    gt,
		index: index,
		order: bandOrder,
	}, nil
}

func (g *GeoTIFF) Width() int      { return g.w }
func (g *GeoTIFF) Height() int     { return g.h }
func (g *GeoTIFF) Bands() []string { return g.order }

func (g *GeoTIFF) Read(band string, col, row int) (float64, error) {
	idx, ok := g.index[band]
	if !ok {
		return 0, eris.Wrapf(model.ErrInvalidInput, "raster: unknown band %q", band)
	}
	pix := make([]float64, 1)
	b := g.ds.Bands()[idx]
	if err := b.Read(col, row, pix, 1, 1); err != nil {
		return 0, eris.Wrapf(err, "raster: read band %s at (%d,%d)", band, col, row)
	}
	return pix[0], nil
}

func (g *GeoTIFF) Geo(col, row int) (lon, lat float64) {
	return applyTransform(g.gt, col, row)
}

func (g *GeoTIFF) Close() error {
	return g.ds.Close()
}
