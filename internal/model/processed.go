package model

// DerivedIndices are the coarse per-sample summary indices attached to
// processed batch samples, distinct from the full indicator set the engine
// computes.
type DerivedIndices struct {
	Bioaccumulation        float64 `json:"bioaccumulation_index"`
	SoilToxicity           float64 `json:"soil_toxicity_index"`
	AcidificationPotential float64 `json:"acidification_potential"`
	NutrientLimitation     float64 `json:"nutrient_limitation_index"`
}

// ProcessedSample is a stored sample enriched with derived indices and the
// deck.gl visualization fields the map page consumes.
type ProcessedSample struct {
	Sample
	DerivedIndices      DerivedIndices `json:"derived_indices"`
	VisualizationFields map[string]any `json:"visualization_fields"`
}
