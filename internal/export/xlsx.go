package export

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

// chemistryColumns are spreadsheet headers parsed into chemistry parameters
// rather than concentrations.
var chemistryColumns = map[string]string{
	"ph":               "pH",
	"organic_matter":   "organic_matter",
	"dissolved_oxygen": "dissolved_oxygen",
	"temperature":      "temperature",
}

// ImportXLSX reads a lab result spreadsheet into samples. The first row is a
// header; the columns location_id, location_name, latitude, longitude,
// water_body_type and sample_date are fixed, every other numeric column is
// treated as an element concentration unless it names a chemistry parameter.
func ImportXLSX(path string) ([]model.Sample, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Wrap(model.ErrInvalidInput, "xlsx: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.Wrap(model.ErrInvalidInput, "xlsx: no data rows")
	}

	header := make([]string, len(sheet.Rows[0].Cells))
	for i, c := range sheet.Rows[0].Cells {
		header[i] = strings.TrimSpace(c.String())
	}

	var samples []model.Sample
	for rowIdx, row := range sheet.Rows[1:] {
		s, err := sampleFromRow(header, row)
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: row %d", rowIdx+2)
		}
		samples = append(samples, *s)
	}
	return samples, nil
}

func sampleFromRow(header []string, row *xlsx.Row) (*model.Sample, error) {
	s := &model.Sample{
		Concentrations:       map[string]float64{},
		Chemistry:            map[string]model.ChemistryParameter{},
		AdditionalParameters: map[string]model.AdditionalParameter{},
		Indicators:           map[string]model.Indicator{},
		GeoPoints:            []model.GeospatialPoint{},
	}

	for i, cell := range row.Cells {
		if i >= len(header) || header[i] == "" {
			continue
		}
		raw := strings.TrimSpace(cell.String())
		if raw == "" {
			continue
		}

		switch strings.ToLower(header[i]) {
		case "location_id":
			s.LocationID = raw
		case "location_name":
			s.LocationName = norm.NFC.String(raw)
		case "latitude":
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, eris.Wrapf(model.ErrInvalidInput, "bad latitude %q", raw)
			}
			s.Latitude = v
		case "longitude":
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, eris.Wrapf(model.ErrInvalidInput, "bad longitude %q", raw)
			}
			s.Longitude = v
		case "water_body_type":
			s.WaterBodyType = raw
		case "sample_date":
			s.SampleDate = raw
		default:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				// Non-numeric extra column; record it as an unmeasured note.
				s.AdditionalParameters[header[i]] = model.AdditionalParameter{
					Measured:    false,
					Description: raw,
				}
				continue
			}
			if name, ok := chemistryColumns[strings.ToLower(header[i])]; ok {
				val := v
				s.Chemistry[name] = model.ChemistryParameter{Value: &val, Description: "Imported"}
			} else {
				s.Concentrations[header[i]] = v
			}
		}
	}

	if s.LocationID == "" {
		return nil, eris.Wrap(model.ErrInvalidInput, "missing location_id")
	}
	return s, nil
}
