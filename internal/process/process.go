// Package process derives the batch summary indices and deck.gl
// visualization fields from stored samples, and runs the reprocessing pass
// over the sample store.
package process

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bluewater-labs/ecoindex/internal/model"
	"github.com/bluewater-labs/ecoindex/internal/store"
)

// round3 rounds to three decimal places, matching the stored precision of
// the legacy processed files.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// chemValue reads a chemistry parameter value, defaulting when absent. Batch
// records are allowed to be partial; the summary indices tolerate gaps.
func chemValue(s *model.Sample, name string, fallback float64) float64 {
	if p, ok := s.Chemistry[name]; ok && p.Value != nil {
		return *p.Value
	}
	return fallback
}

// Derive computes the four summary indices for a sample.
func Derive(s *model.Sample) model.DerivedIndices {
	var sum float64
	for _, v := range s.Concentrations {
		sum += v
	}
	var mean float64
	if n := len(s.Concentrations); n > 0 {
		mean = sum / float64(n)
	}

	al := s.Concentrations["Al"]
	om := chemValue(s, "organic_matter", 0)
	ph := chemValue(s, "pH", 7)

	return model.DerivedIndices{
		Bioaccumulation:        round3(mean),
		SoilToxicity:           round3((al + om) / 10),
		AcidificationPotential: round3((7 - ph) + al),
		NutrientLimitation:     round3(om / 5),
	}
}

// VisualizationFields builds the deck.gl color and height attributes the map
// page reads off each processed sample.
func VisualizationFields(s *model.Sample, d model.DerivedIndices) map[string]any {
	conc := s.Concentrations
	ph := chemValue(s, "pH", 7)
	do := chemValue(s, "dissolved_oxygen", 0)
	temp := chemValue(s, "temperature", 0)
	om := chemValue(s, "organic_matter", 0)

	pick := func(cond bool, hot, cool string) string {
		if cond {
			return hot
		}
		return cool
	}

	return map[string]any{
		"As_color":             pick(conc["As"] > 0.01, "#ff0000", "#ffa07a"),
		"Pb_color":             pick(conc["Pb"] > 0.02, "#ff4500", "#ffb347"),
		"Cd_color":             pick(conc["Cd"] > 0.001, "#ff6347", "#ffc0cb"),
		"Zn_height":            int(conc["Zn"] * 1000),
		"Fe_height":            int(conc["Fe"] * 100),
		"pH_color":             pick(ph >= 6 && ph <= 8, "#32cd32", "#ff6347"),
		"DO_height":            int(do * 50),
		"Temp_color":           pick(temp < 25, "#1e90ff", "#ff8c00"),
		"OrganicMatter_height": int(om * 50),
		"Bioaccumulation_heat": int(d.Bioaccumulation * 100),
		"SoilToxicity_heat":    int(d.SoilToxicity * 100),
	}
}

// One processes a single sample into its batch output record.
func One(s model.Sample) model.ProcessedSample {
	d := Derive(&s)
	return model.ProcessedSample{
		Sample:              s,
		DerivedIndices:      d,
		VisualizationFields: VisualizationFields(&s, d),
	}
}

// Run loads all raw samples, processes each sequentially, persists the
// processed set, and returns it.
func Run(ctx context.Context, st store.Store) ([]model.ProcessedSample, error) {
	samples, err := st.ListSamples(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "process: list samples")
	}

	ps := make([]model.ProcessedSample, 0, len(samples))
	for _, s := range samples {
		ps = append(ps, One(s))
	}

	if err := st.SaveProcessed(ctx, ps); err != nil {
		return nil, eris.Wrap(err, "process: save processed")
	}

	zap.L().Info("processed sample batch", zap.Int("count", len(ps)))
	return ps, nil
}
