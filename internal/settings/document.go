// Package settings loads, merges, and validates the open-schema settings
// documents that drive scenario resolution. A settings document is a string
// keyed mapping read from one or more YAML (or TOML) files; the engine only
// interprets the keys it needs and carries everything else through untouched.
package settings

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a settings document: an open-schema mapping from parameter
// name to scalar, sequence, or nested mapping.
type Document map[string]any

// IntList decodes a YAML value that may be either a single integer or a
// sequence of integers. Legacy settings files use the scalar form for
// model_year; per-case resolved documents always carry a scalar.
type IntList []int

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *IntList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var v []int
		if err := value.Decode(&v); err != nil {
			return err
		}
		*l = v
		return nil
	}
	var v int
	if err := value.Decode(&v); err != nil {
		return err
	}
	*l = IntList{v}
	return nil
}

// NewGen is one new-generation technology entry: a 4-element sequence of
// technology, tech detail, cost case, and unit size.
type NewGen struct {
	Technology string
	TechDetail string
	CostCase   string
	Size       float64
}

// UnmarshalYAML implements yaml.Unmarshaler for the sequence form.
func (g *NewGen) UnmarshalYAML(value *yaml.Node) error {
	var raw []any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if len(raw) < 3 {
		return fmt.Errorf("atb_new_gen entry needs at least technology, tech_detail, and cost_case, got %d elements", len(raw))
	}
	g.Technology = fmt.Sprint(raw[0])
	g.TechDetail = fmt.Sprint(raw[1])
	g.CostCase = fmt.Sprint(raw[2])
	if len(raw) > 3 {
		switch n := raw[3].(type) {
		case int:
			g.Size = float64(n)
		case float64:
			g.Size = n
		}
	}
	return nil
}

// ModifiedGen is one modified new-generation technology entry.
type ModifiedGen struct {
	NewTechnology string `yaml:"new_technology"`
	NewTechDetail string `yaml:"new_tech_detail"`
}

// Params is the typed view of the settings keys the engine actually reads.
// Every field is optional; keys the engine does not recognize are collected
// in Extra so the open schema survives a round trip through the typed view.
type Params struct {
	ModelRegions           []string `yaml:"model_regions"`
	ModelPeriods           [][]int  `yaml:"model_periods"`
	ModelYear              IntList  `yaml:"model_year"`
	ModelFirstPlanningYear IntList  `yaml:"model_first_planning_year"`

	InputFolder           string `yaml:"input_folder"`
	ScenarioDefinitionsFn string `yaml:"scenario_definitions_fn"`
	CaseIDDescriptionFn   string `yaml:"case_id_description_fn"`

	ATBDataYear       int                    `yaml:"atb_data_year"`
	ATBNewGen         []NewGen               `yaml:"atb_new_gen"`
	ModifiedATBNewGen map[string]ModifiedGen `yaml:"modified_atb_new_gen"`
	AdditionalNewGen  []string               `yaml:"additional_new_gen"`

	CostMultiplierTechnologyMap map[string][]string `yaml:"cost_multiplier_technology_map"`
	CostMultiplierRegionMap     map[string][]string `yaml:"cost_multiplier_region_map"`
	AEOFuelRegionMap            map[string][]string `yaml:"aeo_fuel_region_map"`
	RegionAggregations          map[string][]string `yaml:"region_aggregations"`

	GeneratorColumns       []string          `yaml:"generator_columns"`
	EIASeriesScenarioNames map[string]string `yaml:"eia_series_scenario_names"`
	EIAAEOYear             int               `yaml:"eia_aeo_year"`
	FuelEIAAEOYear         int               `yaml:"fuel_eia_aeo_year"`
	LoadEIAAEOYear         int               `yaml:"load_eia_aeo_year"`
	GrowthScenario         string            `yaml:"growth_scenario"`

	RenewablesClusters []map[string]any `yaml:"renewables_clusters"`

	PudlDB string `yaml:"PUDL_DB"`
	PgDB   string `yaml:"PG_DB"`

	// Extra holds every top-level key not represented by a named field.
	Extra map[string]any `yaml:"-"`
}

// DecodeParams extracts the typed view from a document. The document itself
// is never mutated; unrecognized top-level keys land in Extra.
func DecodeParams(doc Document) (Params, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return Params{}, fmt.Errorf("encoding settings: %w", err)
	}
	var p Params
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("decoding settings: %w", err)
	}
	known := knownParamKeys()
	for k, v := range doc {
		if known[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	return p, nil
}

// knownParamKeys returns the set of yaml keys bound to named Params fields.
func knownParamKeys() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(Params{})
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		keys[strings.Split(tag, ",")[0]] = true
	}
	// settings_management is interpreted by the scenario package directly
	// from the raw document, but it is still an engine-owned key.
	keys["settings_management"] = true
	return keys
}

// AsDocument coerces a decoded YAML/TOML value into a Document. Mappings
// with non-string keys (e.g. integer planning years) have their keys
// stringified.
func AsDocument(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return Document(m), true
	case map[any]any:
		out := make(Document, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	case map[int]any:
		out := make(Document, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
