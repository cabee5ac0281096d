package engine

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

// CatalogEntry holds the static metadata attached to an indicator kind.
type CatalogEntry struct {
	Description string `yaml:"description"`
	Impacts     string `yaml:"impacts"`
}

var catalog map[Kind]CatalogEntry

func init() {
	var doc struct {
		Indicators map[Kind]CatalogEntry `yaml:"indicators"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		panic("engine: parse embedded catalog: " + err.Error())
	}
	catalog = doc.Indicators
	for _, k := range Kinds {
		if _, ok := catalog[k]; !ok {
			panic("engine: catalog missing entry for " + string(k))
		}
	}
}

// Catalog returns the metadata entry for an indicator kind.
func Catalog(k Kind) CatalogEntry {
	return catalog[k]
}

// EmptyIndicators returns a fresh indicator map with every kind present and
// no values set, ready to be passed through Compute.
func EmptyIndicators() map[string]model.Indicator {
	out := make(map[string]model.Indicator, len(Kinds))
	for _, k := range Kinds {
		e := catalog[k]
		out[string(k)] = model.Indicator{
			Description: e.Description,
			Impacts:     e.Impacts,
		}
	}
	return out
}
