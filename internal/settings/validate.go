package settings

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ReferenceStore supplies the warehouse reference data the validator cross
// checks settings against.
type ReferenceStore interface {
	// DistinctCostCases returns the cost-case labels available for one year
	// of cost projection data.
	DistinctCostCases(ctx context.Context, atbYear int) ([]string, error)
	// TechnologyExists reports whether a (technology, tech_detail) pair has
	// any rows in the reference cost table.
	TechnologyExists(ctx context.Context, technology, techDetail string) (bool, error)
	// RegionIDs returns the full list of base region identifiers.
	RegionIDs(ctx context.Context) ([]string, error)
}

// Validator cross-checks a settings document against warehouse reference
// data. Soft inconsistencies are written to Logger as warnings; authoring
// mistakes that would silently corrupt downstream model inputs are returned
// as errors.
type Validator struct {
	Store  ReferenceStore
	Logger io.Writer
}

// Check validates the document. It mutates the document only to normalize
// fuel and demand scenario labels whose embedded year disagrees with the
// configured AEO data year.
func (v *Validator) Check(ctx context.Context, doc Document) error {
	logger := v.Logger
	if logger == nil {
		logger = io.Discard
	}

	p, err := DecodeParams(doc)
	if err != nil {
		return err
	}

	if p.ATBDataYear != 0 {
		if err := v.checkCostCases(ctx, doc, p.ATBDataYear); err != nil {
			return err
		}
	}

	refRegions, err := v.Store.RegionIDs(ctx)
	if err != nil {
		return fmt.Errorf("querying reference regions: %w", err)
	}
	refRegionSet := toSet(refRegions)

	costMultTechs := make(map[string]bool)
	for _, techs := range p.CostMultiplierTechnologyMap {
		for _, t := range techs {
			costMultTechs[t] = true
		}
	}

	for _, gen := range p.ATBNewGen {
		ok, err := v.Store.TechnologyExists(ctx, gen.Technology, gen.TechDetail)
		if err != nil {
			return fmt.Errorf("querying reference technologies: %w", err)
		}
		if !ok {
			fmt.Fprintf(logger, "warning: the technology %s - %s listed under 'atb_new_gen' does not match any reference cost technologies; check your settings file to ensure it is spelled correctly\n", gen.Technology, gen.TechDetail)
		}
		name := gen.Technology + "_" + gen.TechDetail
		if !costMultTechs[name] {
			fmt.Fprintf(logger, "warning: the technology %q listed under 'atb_new_gen' is not fully specified in the 'cost_multiplier_technology_map' parameter; include the full <tech>_<tech_detail> name\n", name)
		}
	}

	for _, key := range sortedKeys(p.ModifiedATBNewGen) {
		mod := p.ModifiedATBNewGen[key]
		name := mod.NewTechnology + "_" + mod.NewTechDetail
		if !costMultTechs[name] {
			fmt.Fprintf(logger, "warning: the modified technology %q listed under 'modified_atb_new_gen' is not fully specified in the 'cost_multiplier_technology_map' parameter; include the full <new_technology>_<new_tech_detail> name\n", name)
		}
	}

	for _, name := range p.AdditionalNewGen {
		if !costMultTechs[name] {
			fmt.Fprintf(logger, "warning: the additional technology %q listed under 'additional_new_gen' is not fully specified in the 'cost_multiplier_technology_map' parameter\n", name)
		}
	}

	for _, agg := range sortedKeys(p.RegionAggregations) {
		for _, base := range p.RegionAggregations[agg] {
			if !refRegionSet[base] {
				fmt.Fprintf(logger, "warning: there is no reference region %s, which is listed in the aggregation %s\n", base, agg)
			}
		}
	}

	costMultRegions := memberSet(p.CostMultiplierRegionMap)
	fuelRegions := memberSet(p.AEOFuelRegionMap)
	for _, region := range p.ModelRegions {
		if !costMultRegions[region] {
			fmt.Fprintf(logger, "warning: the model region %s is not included in the settings parameter 'cost_multiplier_region_map'\n", region)
		}
		if !fuelRegions[region] {
			fmt.Fprintf(logger, "warning: the model region %s is not included in the settings parameter 'aeo_fuel_region_map'\n", region)
		}
	}

	if dupes := duplicates(p.GeneratorColumns); len(dupes) > 0 {
		return fmt.Errorf("%w: the settings parameter 'generator_columns' has duplicates of %s; remove the duplicates and try again", ErrDuplicateKey, strings.Join(dupes, ", "))
	}

	fixScenarioYears(doc, p, logger)
	return nil
}

// checkCostCases collects every cost-case label referenced anywhere in the
// settings tree, under either atb_new_gen entries or atb_cost_case
// overrides, and fails if any label is not valid for the configured year of
// cost data.
func (v *Validator) checkCostCases(ctx context.Context, doc Document, atbYear int) error {
	valid, err := v.Store.DistinctCostCases(ctx, atbYear)
	if err != nil {
		return fmt.Errorf("querying cost cases for %d: %w", atbYear, err)
	}
	validSet := toSet(valid)

	var labels []string
	for _, node := range findValues(doc, "atb_new_gen") {
		for _, entry := range clusterSequence(node) {
			if len(entry) >= 3 {
				labels = append(labels, fmt.Sprint(entry[2]))
			}
		}
	}
	for _, node := range findValues(doc, "atb_cost_case") {
		labels = append(labels, fmt.Sprint(node))
	}

	badSet := make(map[string]bool)
	for _, label := range labels {
		if !validSet[label] {
			badSet[label] = true
		}
	}
	if len(badSet) == 0 {
		return nil
	}

	bad := make([]string, 0, len(badSet))
	for label := range badSet {
		bad = append(bad, label)
	}
	sort.Strings(bad)
	return fmt.Errorf("%w: you are using cost data from %d, which has cost cases [%s]; your settings reference the cost cases [%s] under 'atb_new_gen' or 'atb_cost_case'; search your settings file for these values and replace them with valid cost cases for your data year",
		ErrInvalidValue, atbYear, strings.Join(valid, ", "), strings.Join(bad, ", "))
}

// findValues walks the tree and returns every value stored under the given
// key, at any depth, in mappings or inside sequences of mappings.
func findValues(node any, key string) []any {
	var found []any
	switch val := node.(type) {
	case Document, map[string]any, map[any]any:
		d, _ := AsDocument(val)
		if v, ok := d[key]; ok {
			found = append(found, v)
		}
		for _, k := range sortedKeys(d) {
			found = append(found, findValues(d[k], key)...)
		}
	case []any:
		for _, item := range val {
			found = append(found, findValues(item, key)...)
		}
	case []map[string]any:
		for _, item := range val {
			found = append(found, findValues(item, key)...)
		}
	}
	return found
}

// clusterSequence coerces a value into a slice of entry sequences.
func clusterSequence(v any) [][]any {
	var out [][]any
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	for _, item := range list {
		switch entry := item.(type) {
		case []any:
			out = append(out, entry)
		case []string:
			conv := make([]any, len(entry))
			for i, s := range entry {
				conv[i] = s
			}
			out = append(out, conv)
		}
	}
	return out
}

// fixScenarioYears rewrites reference-style scenario labels whose embedded
// year does not match the configured AEO data year. The fuel labels in
// eia_series_scenario_names and the demand growth_scenario are both
// normalized, with a warning per rewrite.
func fixScenarioYears(doc Document, p Params, logger io.Writer) {
	fuelYear := p.FuelEIAAEOYear
	if fuelYear == 0 {
		fuelYear = p.EIAAEOYear
	}
	if fuelYear != 0 {
		yearStr := strconv.Itoa(fuelYear)
		for _, k := range sortedKeys(p.EIASeriesScenarioNames) {
			label := p.EIASeriesScenarioNames[k]
			if strings.Contains(label, "REF") && !strings.Contains(label, yearStr) {
				fmt.Fprintf(logger, "warning: the EIA fuel scenario (eia_series_scenario_names) key %s has a value of %s, which does not match the AEO data year %d; it has been changed to REF%d\n", k, label, fuelYear, fuelYear)
				setNestedString(doc, "eia_series_scenario_names", k, "REF"+yearStr)
			}
		}
	}

	loadYear := p.LoadEIAAEOYear
	if loadYear == 0 {
		loadYear = p.EIAAEOYear
	}
	if loadYear != 0 {
		yearStr := strconv.Itoa(loadYear)
		if strings.Contains(p.GrowthScenario, "REF") && !strings.Contains(p.GrowthScenario, yearStr) {
			fmt.Fprintf(logger, "warning: the EIA demand growth scenario (growth_scenario) value is %s, which does not match the AEO data year %d; it has been changed to REF%d\n", p.GrowthScenario, loadYear, loadYear)
			doc["growth_scenario"] = "REF" + yearStr
		}
	}
}

// setNestedString writes doc[param][key] in place, tolerating the mapping
// shapes a document may carry.
func setNestedString(doc Document, param, key, value string) {
	switch m := doc[param].(type) {
	case Document:
		m[key] = value
	case map[string]any:
		m[key] = value
	case map[string]string:
		m[key] = value
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func memberSet(m map[string][]string) map[string]bool {
	set := make(map[string]bool)
	for _, members := range m {
		for _, member := range members {
			set[member] = true
		}
	}
	return set
}

func duplicates(items []string) []string {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item]++
	}
	var dupes []string
	for item, n := range counts {
		if n > 1 {
			dupes = append(dupes, item)
		}
	}
	sort.Strings(dupes)
	return dupes
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
