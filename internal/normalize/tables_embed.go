package normalize

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/directionals.yaml
var directionalsYAML []byte

//go:embed data/street_types.yaml
var streetTypesYAML []byte

//go:embed data/occupancy_types.yaml
var occupancyTypesYAML []byte

//go:embed data/states.yaml
var statesYAML []byte

//go:embed data/known_oddities.yaml
var knownOdditiesYAML []byte

//go:embed data/problem_abbreviations.yaml
var problemAbbrvsYAML []byte

func loadEmbeddedTable(name string, raw []byte) map[string]string {
	table := map[string]string{}
	if err := yaml.Unmarshal(raw, &table); err != nil {
		// embedded data ships with the binary; a parse failure is a
		// build defect, not a runtime condition
		panic(fmt.Sprintf("embedded table %s: %v", name, err))
	}
	return table
}
