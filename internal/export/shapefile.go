// Package export moves indicator data across file formats: sampled feature
// collections out to point shapefiles, and lab result spreadsheets in as
// samples.
package export

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/bluewater-labs/ecoindex/internal/engine"
	"github.com/bluewater-labs/ecoindex/internal/raster"
)

// dbfCodes maps indicator kinds to DBF-safe attribute names. DBF caps field
// names at 10 characters, so the long indicator keys need fixed short codes.
var dbfCodes = map[engine.Kind]string{
	engine.KindBioaccumulationFactor:        "bioacc",
	engine.KindSoilToxicity:                 "soiltox",
	engine.KindNutrientLimitation:           "nutrlim",
	engine.KindAcidificationPotential:       "acidpot",
	engine.KindSedimentDeposition:           "seddep",
	engine.KindMetalMobility:                "metmob",
	engine.KindMicrobialSuppression:         "micsup",
	engine.KindAquaticPlantStress:           "aqstress",
	engine.KindEutrophicationRisk:           "eutroph",
	engine.KindSoilStructureStability:       "soilstab",
	engine.KindHeavyMetalToxicityAquatic:    "hmtoxaq",
	engine.KindPlantNutrientAvailability:    "plantnut",
	engine.KindOxygenDepletionRisk:          "oxydepl",
	engine.KindMetalBioaccumulationSoilOrgs: "mbiosoil",
	engine.KindEcosystemResilience:          "resil",
}

// Shapefile writes a sampled feature collection to a point shapefile at
// path. Attribute columns carry the element concentrations and the indicator
// values under their DBF short codes.
func Shapefile(fc *geojson.FeatureCollection, path string) error {
	if fc == nil || len(fc.Features) == 0 {
		return eris.New("export: empty feature collection")
	}

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	fields := make([]shp.Field, 0, len(raster.ElementBands)+len(engine.Kinds))
	for _, sym := range raster.ElementBands {
		fields = append(fields, shp.FloatField(sym, 18, 6))
	}
	for _, k := range engine.Kinds {
		fields = append(fields, shp.FloatField(dbfCodes[k], 18, 4))
	}
	w.SetFields(fields)

	for _, f := range fc.Features {
		pt, ok := f.Geometry.(*geom.Point)
		if !ok {
			return eris.New("export: feature geometry is not a point")
		}
		row := int(w.Write(&shp.Point{X: pt.X(), Y: pt.Y()}))

		conc, _ := f.Properties["concentrations"].(map[string]any)
		indicators, _ := f.Properties["indicators"].(map[string]any)

		col := 0
		for _, sym := range raster.ElementBands {
			if err := w.WriteAttribute(row, col, floatProp(conc, sym)); err != nil {
				return eris.Wrapf(err, "export: write %s", sym)
			}
			col++
		}
		for _, k := range engine.Kinds {
			if err := w.WriteAttribute(row, col, floatProp(indicators, string(k))); err != nil {
				return eris.Wrapf(err, "export: write %s", k)
			}
			col++
		}
	}

	return nil
}

func floatProp(props map[string]any, key string) float64 {
	if props == nil {
		return 0
	}
	v, _ := props[key].(float64)
	return v
}
