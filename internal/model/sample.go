package model

import (
	"github.com/rotisserie/eris"
)

// RequiredElements lists the element symbols every sample must carry a
// concentration for before indicators can be computed.
var RequiredElements = []string{"Al", "As", "Pb", "Cd", "Hg", "Cr", "Ni", "Cu", "Zn", "Fe"}

// RequiredChemistry lists the chemistry parameters every sample must carry.
var RequiredChemistry = []string{"pH", "organic_matter", "dissolved_oxygen", "temperature"}

// ErrInvalidInput marks validation failures: missing required fields,
// malformed rasters, insufficient bands. Handlers map it to a 400.
var ErrInvalidInput = eris.New("invalid input")

// Visualization describes how a value should be rendered on the deck.gl map.
type Visualization struct {
	Type        string `json:"type"`
	Attribute   string `json:"attribute"`
	Description string `json:"description"`
}

// ChemistryParameter is a measured environmental property such as pH.
type ChemistryParameter struct {
	Value         *float64       `json:"value"`
	Description   string         `json:"description"`
	Visualization *Visualization `json:"deckgl_visualization,omitempty"`
}

// AdditionalParameter is an optional measurement outside the required set.
type AdditionalParameter struct {
	Measured      bool           `json:"measured"`
	Description   string         `json:"description"`
	Visualization *Visualization `json:"deckgl_visualization,omitempty"`
}

// Indicator is a derived scalar metric describing ecosystem risk or
// condition. Values are only ever written by the indicator engine.
type Indicator struct {
	Value         *float64       `json:"value"`
	Description   string         `json:"description"`
	Impacts       string         `json:"impacts,omitempty"`
	Visualization *Visualization `json:"deckgl_visualization,omitempty"`
}

// GeospatialPoint ties a named parameter to a map visualization. Its value is
// populated after computation when the parameter matches an indicator key.
type GeospatialPoint struct {
	Parameter     string        `json:"parameter"`
	Value         *float64      `json:"value"`
	Visualization Visualization `json:"deckgl_visualization"`
}

// Sample is a single water or soil sample with its measurements and the
// indicator slots the engine fills in.
type Sample struct {
	LocationID           string                         `json:"location_id"`
	LocationName         string                         `json:"location_name"`
	Latitude             float64                        `json:"latitude"`
	Longitude            float64                        `json:"longitude"`
	WaterBodyType        string                         `json:"water_body_type"`
	SampleDate           string                         `json:"sample_date"`
	Concentrations       map[string]float64             `json:"concentrations"`
	Chemistry            map[string]ChemistryParameter  `json:"chemistry"`
	AdditionalParameters map[string]AdditionalParameter `json:"additional_parameters"`
	Indicators           map[string]Indicator           `json:"ecosystem_indicators"`
	GeoPoints            []GeospatialPoint              `json:"geospatial_data_points"`
}

// Validate checks that every required concentration and chemistry key is
// present with a value. Failures wrap ErrInvalidInput.
func (s *Sample) Validate() error {
	for _, sym := range RequiredElements {
		if _, ok := s.Concentrations[sym]; !ok {
			return eris.Wrapf(ErrInvalidInput, "missing required concentration %q", sym)
		}
	}
	for _, name := range RequiredChemistry {
		p, ok := s.Chemistry[name]
		if !ok || p.Value == nil {
			return eris.Wrapf(ErrInvalidInput, "missing required chemistry parameter %q", name)
		}
	}
	return nil
}

// Chem returns the value of a chemistry parameter, or an ErrInvalidInput
// wrapped error when the parameter or its value is absent.
func (s *Sample) Chem(name string) (float64, error) {
	p, ok := s.Chemistry[name]
	if !ok || p.Value == nil {
		return 0, eris.Wrapf(ErrInvalidInput, "missing required chemistry parameter %q", name)
	}
	return *p.Value, nil
}

// Concentration returns the measured concentration of an element, or an
// ErrInvalidInput wrapped error when the symbol is absent.
func (s *Sample) Concentration(sym string) (float64, error) {
	v, ok := s.Concentrations[sym]
	if !ok {
		return 0, eris.Wrapf(ErrInvalidInput, "missing required concentration %q", sym)
	}
	return v, nil
}
