package process

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

func ptr(v float64) *float64 { return &v }

func batchSample(id string) model.Sample {
	return model.Sample{
		LocationID:    id,
		LocationName:  "Riverbank A",
		Latitude:      40.7,
		Longitude:     -74.0,
		WaterBodyType: "River",
		SampleDate:    "2025-04-01",
		Concentrations: map[string]float64{
			"Al": 0.1,
			"Fe": 2.0,
		},
		Chemistry: map[string]model.ChemistryParameter{
			"pH":             {Value: ptr(6.5)},
			"organic_matter": {Value: ptr(4.0)},
		},
	}
}

func TestDerive(t *testing.T) {
	s := batchSample("a")
	d := Derive(&s)

	assert.InDelta(t, 1.05, d.Bioaccumulation, 1e-9)
	assert.InDelta(t, 0.41, d.SoilToxicity, 1e-9)
	assert.InDelta(t, 0.6, d.AcidificationPotential, 1e-9)
	assert.InDelta(t, 0.8, d.NutrientLimitation, 1e-9)
}

func TestDerive_EmptySample(t *testing.T) {
	s := model.Sample{LocationID: "empty"}
	d := Derive(&s)

	assert.Zero(t, d.Bioaccumulation)
	assert.Zero(t, d.SoilToxicity)
	// pH defaults to neutral when unreported.
	assert.Zero(t, d.AcidificationPotential)
	assert.Zero(t, d.NutrientLimitation)
}

func TestDerive_Rounding(t *testing.T) {
	s := model.Sample{
		LocationID:     "r",
		Concentrations: map[string]float64{"Al": 0.3333, "Fe": 0.3333, "Pb": 0.3333},
	}
	d := Derive(&s)
	assert.InDelta(t, 0.333, d.Bioaccumulation, 1e-9)
}

func TestVisualizationFields(t *testing.T) {
	s := batchSample("a")
	d := Derive(&s)
	vf := VisualizationFields(&s, d)

	assert.Equal(t, "#ffa07a", vf["As_color"])
	assert.Equal(t, "#ffb347", vf["Pb_color"])
	assert.Equal(t, "#ffc0cb", vf["Cd_color"])
	assert.Equal(t, 0, vf["Zn_height"])
	assert.Equal(t, 200, vf["Fe_height"])
	assert.Equal(t, "#32cd32", vf["pH_color"])
	assert.Equal(t, 0, vf["DO_height"])
	assert.Equal(t, "#1e90ff", vf["Temp_color"])
	assert.Equal(t, 200, vf["OrganicMatter_height"])
	assert.Equal(t, 105, vf["Bioaccumulation_heat"])
	assert.Equal(t, 41, vf["SoilToxicity_heat"])
}

func TestVisualizationFields_Exceedances(t *testing.T) {
	s := batchSample("hot")
	s.Concentrations["As"] = 0.05
	s.Concentrations["Pb"] = 0.1
	s.Concentrations["Cd"] = 0.01
	s.Chemistry["pH"] = model.ChemistryParameter{Value: ptr(4.5)}
	s.Chemistry["temperature"] = model.ChemistryParameter{Value: ptr(30.0)}

	d := Derive(&s)
	vf := VisualizationFields(&s, d)

	assert.Equal(t, "#ff0000", vf["As_color"])
	assert.Equal(t, "#ff4500", vf["Pb_color"])
	assert.Equal(t, "#ff6347", vf["Cd_color"])
	assert.Equal(t, "#ff6347", vf["pH_color"])
	assert.Equal(t, "#ff8c00", vf["Temp_color"])
}

func TestOne(t *testing.T) {
	p := One(batchSample("a"))

	assert.Equal(t, "a", p.LocationID)
	assert.InDelta(t, 1.05, p.DerivedIndices.Bioaccumulation, 1e-9)
	require.NotNil(t, p.VisualizationFields)
	assert.Equal(t, 200, p.VisualizationFields["Fe_height"])
}

// stubStore is an in-memory Store for exercising Run.
type stubStore struct {
	samples   []model.Sample
	processed []model.ProcessedSample
	listErr   error
}

func (s *stubStore) AddSample(_ context.Context, sample model.Sample) error {
	s.samples = append(s.samples, sample)
	return nil
}

func (s *stubStore) ListSamples(_ context.Context) ([]model.Sample, error) {
	return s.samples, s.listErr
}

func (s *stubStore) SaveProcessed(_ context.Context, ps []model.ProcessedSample) error {
	s.processed = ps
	return nil
}

func (s *stubStore) ListProcessed(_ context.Context) ([]model.ProcessedSample, error) {
	return s.processed, nil
}

func (s *stubStore) Migrate(context.Context) error { return nil }
func (s *stubStore) Close() error                  { return nil }

func TestRun(t *testing.T) {
	st := &stubStore{samples: []model.Sample{batchSample("a"), batchSample("b")}}

	ps, err := Run(context.Background(), st)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "a", ps[0].LocationID)
	assert.Equal(t, "b", ps[1].LocationID)

	// The processed batch is persisted, replacing the old set.
	assert.Len(t, st.processed, 2)
}

func TestRun_EmptyStore(t *testing.T) {
	st := &stubStore{}

	ps, err := Run(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, ps)
	assert.NotNil(t, st.processed)
}

func TestRun_ListError(t *testing.T) {
	st := &stubStore{listErr: assert.AnError}

	_, err := Run(context.Background(), st)
	assert.Error(t, err)
}
