// Package engine computes the fixed set of ecosystem indicators from a
// sample's metal concentrations and chemistry parameters. The indicator set
// is a closed enum with a total kind-to-formula mapping, so a misspelled or
// missing indicator cannot slip through silently.
package engine

import (
	"math"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

// Kind identifies one of the derived ecosystem indicators.
type Kind string

const (
	KindBioaccumulationFactor        Kind = "bioaccumulation_factor"
	KindSoilToxicity                 Kind = "soil_toxicity_index"
	KindNutrientLimitation           Kind = "nutrient_limitation_index"
	KindAcidificationPotential       Kind = "acidification_potential"
	KindSedimentDeposition           Kind = "sediment_deposition_index"
	KindMetalMobility                Kind = "metal_mobility_index"
	KindMicrobialSuppression         Kind = "microbial_activity_suppression_index"
	KindAquaticPlantStress           Kind = "aquatic_plant_stress_index"
	KindEutrophicationRisk           Kind = "eutrophication_risk_index"
	KindSoilStructureStability       Kind = "soil_structure_stability_index"
	KindHeavyMetalToxicityAquatic    Kind = "heavy_metal_toxicity_to_aquatic_life_index"
	KindPlantNutrientAvailability    Kind = "plant_nutrient_availability_index"
	KindOxygenDepletionRisk          Kind = "oxygen_depletion_risk_index"
	KindMetalBioaccumulationSoilOrgs Kind = "metal_bioaccumulation_in_soil_organisms_index"
	KindEcosystemResilience          Kind = "ecosystem_resilience_index"
)

// Kinds lists every indicator kind in computation order.
var Kinds = []Kind{
	KindBioaccumulationFactor,
	KindSoilToxicity,
	KindNutrientLimitation,
	KindAcidificationPotential,
	KindSedimentDeposition,
	KindMetalMobility,
	KindMicrobialSuppression,
	KindAquaticPlantStress,
	KindEutrophicationRisk,
	KindSoilStructureStability,
	KindHeavyMetalToxicityAquatic,
	KindPlantNutrientAvailability,
	KindOxygenDepletionRisk,
	KindMetalBioaccumulationSoilOrgs,
	KindEcosystemResilience,
}

// Defaults holds measurement stand-ins for parameters the sampling campaign
// does not yet collect. They feed the metal mobility and soil structure
// formulas in place of real redox and chloride readings.
type Defaults struct {
	RedoxMV     float64 `yaml:"redox_mv" mapstructure:"redox_mv"`
	ChlorideMgL float64 `yaml:"chloride_mgl" mapstructure:"chloride_mgl"`
}

// StandardDefaults are the assumed values used when no configuration
// overrides them: a neutral redox potential and no chloride load.
var StandardDefaults = Defaults{RedoxMV: 200, ChlorideMgL: 0}

// inputs is the flattened view of a sample the formulas operate on.
type inputs struct {
	pH, om, do, temp                      float64
	al, as, pb, cd, hg, cr, ni, cu, zn, fe float64
}

// formulas maps every indicator kind to its closed-form expression. The map
// is total over Kinds; computeAll walks Kinds so nothing is skipped.
var formulas = map[Kind]func(in inputs, d Defaults) float64{
	KindBioaccumulationFactor: func(in inputs, _ Defaults) float64 {
		return (in.hg + in.cd + in.as) * 10000
	},
	KindSoilToxicity: func(in inputs, _ Defaults) float64 {
		return (in.pb+in.cd+in.cr+in.ni+in.cu+in.zn+in.fe)*10 + (7-in.pH)*5 - in.om*2
	},
	KindNutrientLimitation: func(in inputs, _ Defaults) float64 {
		return 100 - in.om*10
	},
	KindAcidificationPotential: func(in inputs, _ Defaults) float64 {
		return (7-in.pH)*10 + (in.al+in.as+in.pb)*50
	},
	KindSedimentDeposition: func(in inputs, _ Defaults) float64 {
		return in.fe * 20
	},
	KindMetalMobility: func(in inputs, d Defaults) float64 {
		return (in.pb+in.cd+in.hg)*1000 + (300 - d.RedoxMV)
	},
	KindMicrobialSuppression: func(in inputs, _ Defaults) float64 {
		return (in.cu+in.zn+in.ni)*100 + math.Abs(in.pH-7)*5
	},
	KindAquaticPlantStress: func(in inputs, _ Defaults) float64 {
		return (8-in.do)*10 + (in.cr+in.hg)*10000
	},
	KindEutrophicationRisk: func(in inputs, _ Defaults) float64 {
		return in.om * 15
	},
	KindSoilStructureStability: func(in inputs, d Defaults) float64 {
		return in.om*10 - d.ChlorideMgL*2
	},
	KindHeavyMetalToxicityAquatic: func(in inputs, _ Defaults) float64 {
		return (in.cd+in.hg+in.as)*100000 + (6-in.do)*5
	},
	KindPlantNutrientAvailability: func(in inputs, _ Defaults) float64 {
		return in.om*15 - math.Abs(in.pH-6.5)*10
	},
	KindOxygenDepletionRisk: func(in inputs, _ Defaults) float64 {
		return (8-in.do)*10 + (in.temp-20)*2 + in.om*3
	},
	KindMetalBioaccumulationSoilOrgs: func(in inputs, _ Defaults) float64 {
		return (in.pb+in.zn+in.cu)*100 + in.om*5
	},
	KindEcosystemResilience: func(in inputs, _ Defaults) float64 {
		return math.Max(0, in.om*10+in.do*5-(in.pb+in.cd+in.hg)*1000-math.Abs(in.pH-7)*3)
	},
}

// Compute evaluates every indicator formula against the sample and writes the
// results into its indicator map, then copies each fresh value onto any
// geospatial point whose parameter names that indicator. The sample is
// mutated in place; no other side effects.
//
// A missing required concentration or chemistry key fails with an error
// wrapping model.ErrInvalidInput before anything is written.
func Compute(s *model.Sample, d Defaults) error {
	in, err := extract(s)
	if err != nil {
		return err
	}

	if s.Indicators == nil {
		s.Indicators = EmptyIndicators()
	}

	for _, k := range Kinds {
		v := formulas[k](in, d)
		ind, ok := s.Indicators[string(k)]
		if !ok {
			e := catalog[k]
			ind = model.Indicator{Description: e.Description, Impacts: e.Impacts}
		}
		ind.Value = &v
		s.Indicators[string(k)] = ind
	}

	for i := range s.GeoPoints {
		if ind, ok := s.Indicators[s.GeoPoints[i].Parameter]; ok {
			v := *ind.Value
			s.GeoPoints[i].Value = &v
		}
	}

	return nil
}

func extract(s *model.Sample) (inputs, error) {
	var in inputs
	var err error

	if in.pH, err = s.Chem("pH"); err != nil {
		return in, err
	}
	if in.om, err = s.Chem("organic_matter"); err != nil {
		return in, err
	}
	if in.do, err = s.Chem("dissolved_oxygen"); err != nil {
		return in, err
	}
	if in.temp, err = s.Chem("temperature"); err != nil {
		return in, err
	}

	for _, e := range []struct {
		sym string
		dst *float64
	}{
		{"Al", &in.al}, {"As", &in.as}, {"Pb", &in.pb}, {"Cd", &in.cd},
		{"Hg", &in.hg}, {"Cr", &in.cr}, {"Ni", &in.ni}, {"Cu", &in.cu},
		{"Zn", &in.zn}, {"Fe", &in.fe},
	} {
		if *e.dst, err = s.Concentration(e.sym); err != nil {
			return in, err
		}
	}

	return in, nil
}

// Values returns the computed indicator values keyed by kind name. Kinds
// without a value yet map to nil.
func Values(s *model.Sample) map[string]*float64 {
	out := make(map[string]*float64, len(Kinds))
	for _, k := range Kinds {
		if ind, ok := s.Indicators[string(k)]; ok {
			out[string(k)] = ind.Value
		} else {
			out[string(k)] = nil
		}
	}
	return out
}
