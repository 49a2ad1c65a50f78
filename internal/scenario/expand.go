package scenario

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/fernfell/gridgen/internal/settings"
)

// Period pairs a target model year with its first allowed investment year.
type Period struct {
	FirstPlanningYear int
	ModelYear         int
}

// Expander resolves one settings document per (planning year, case) pair.
// It carries the per-run state needed to warn only once per distinct
// (category, value) pair with no settings_management entry.
type Expander struct {
	Logger io.Writer

	warned map[warnKey]bool
}

type warnKey struct {
	category string
	value    string
}

// NewExpander returns an Expander writing warnings to logger, which may be
// nil.
func NewExpander(logger io.Writer) *Expander {
	if logger == nil {
		logger = io.Discard
	}
	return &Expander{Logger: logger, warned: make(map[warnKey]bool)}
}

// Expand builds the nested year -> case id -> resolved settings mapping.
//
// Each case starts from an independent deep copy of the base document, so
// no two resolved documents share mutable state. For every case, the
// all_cases override for its year is merged first, then one override per
// category column of the scenario definitions, selected by the case's
// value label. Two category overrides writing the same leaf key fail with
// a ConflictError. Finally the planning-year fields and the case name are
// injected, overriding anything the scenario set.
func (e *Expander) Expand(doc settings.Document, defs *Definitions) (map[int]map[string]settings.Document, error) {
	if e.warned == nil {
		e.warned = make(map[warnKey]bool)
	}
	logger := e.Logger
	if logger == nil {
		logger = io.Discard
	}

	p, err := settings.DecodeParams(doc)
	if err != nil {
		return nil, err
	}

	periods, err := PlanningPeriods(p)
	if err != nil {
		return nil, err
	}

	caseNames, err := loadCaseNames(p)
	if err != nil {
		return nil, err
	}

	resolved := make(map[int]map[string]settings.Document, len(periods))
	for _, period := range periods {
		year := period.ModelYear
		resolved[year] = make(map[string]settings.Document)
		management := managementForYear(doc, year)

		for _, caseID := range defs.CaseIDs(year) {
			cs := settings.DeepCopy(doc)
			cs["case_id"] = caseID

			if override, ok := settings.AsDocument(management["all_cases"]); ok {
				cs = settings.Merge(cs, override)
			}

			modified := make(map[string]bool)
			for _, category := range defs.Categories {
				value, ok := defs.Value(caseID, year, category)
				if !ok {
					continue // category not defined for this case
				}

				override := categoryOverride(management, category, value)
				if len(override) == 0 {
					key := warnKey{category: category, value: value}
					if !e.warned[key] {
						e.warned[key] = true
						fmt.Fprintf(logger, "warning: the parameter value %q from column %q in your scenario definitions file is not included in the 'settings_management' dictionary; settings for case id %q will not be modified to reflect this scenario\n", value, category, caseID)
					}
					continue
				}

				for _, key := range settings.Flatten(override) {
					if modified[key] {
						return nil, &settings.ConflictError{Key: key, CaseID: caseID}
					}
					modified[key] = true
				}
				cs = settings.Merge(cs, override)
			}

			cs["model_first_planning_year"] = period.FirstPlanningYear
			cs["model_year"] = year
			name, ok := caseNames[caseID]
			if !ok {
				return nil, fmt.Errorf("%w: case id %q is not present in the case name table", settings.ErrNotFound, caseID)
			}
			cs["case_name"] = name

			resolved[year][caseID] = cs
		}
	}
	return resolved, nil
}

// PlanningPeriods derives the ordered planning periods from either the
// model_periods pairs or the zipped model_year and
// model_first_planning_year lists.
func PlanningPeriods(p settings.Params) ([]Period, error) {
	if len(p.ModelPeriods) > 0 {
		periods := make([]Period, 0, len(p.ModelPeriods))
		for _, pair := range p.ModelPeriods {
			if len(pair) != 2 {
				return nil, fmt.Errorf("%w: model_periods entries must be [start_year, end_year] pairs, got %v", settings.ErrMissingConfiguration, pair)
			}
			periods = append(periods, Period{FirstPlanningYear: pair[0], ModelYear: pair[1]})
		}
		return periods, nil
	}

	if len(p.ModelYear) > 0 && len(p.ModelFirstPlanningYear) > 0 {
		n := len(p.ModelYear)
		if len(p.ModelFirstPlanningYear) < n {
			n = len(p.ModelFirstPlanningYear)
		}
		periods := make([]Period, 0, n)
		for i := 0; i < n; i++ {
			periods = append(periods, Period{
				FirstPlanningYear: p.ModelFirstPlanningYear[i],
				ModelYear:         p.ModelYear[i],
			})
		}
		return periods, nil
	}

	return nil, fmt.Errorf("%w: to build scenario settings your settings file should include either 'model_periods' (a list of 2-element lists) or the keys 'model_year' and 'model_first_planning_year' (each a list of years)", settings.ErrMissingConfiguration)
}

func loadCaseNames(p settings.Params) (map[string]string, error) {
	if p.CaseIDDescriptionFn == "" {
		return nil, fmt.Errorf("%w: the settings parameter 'case_id_description_fn' is required to name resolved cases", settings.ErrMissingConfiguration)
	}
	return LoadCaseNames(filepath.Join(p.InputFolder, p.CaseIDDescriptionFn))
}

// managementForYear returns the settings_management slice for one planning
// year, or an empty document when absent. Year keys may be integers or
// strings depending on how the document was built.
func managementForYear(doc settings.Document, year int) settings.Document {
	management, ok := settings.AsDocument(doc["settings_management"])
	if !ok {
		return settings.Document{}
	}
	if slice, ok := settings.AsDocument(management[strconv.Itoa(year)]); ok {
		return slice
	}
	return settings.Document{}
}

// categoryOverride looks up the override fragment for one (category, value
// label) pair, returning an empty document when either level is missing.
func categoryOverride(management settings.Document, category, value string) settings.Document {
	byValue, ok := settings.AsDocument(management[category])
	if !ok {
		return nil
	}
	override, ok := settings.AsDocument(byValue[value])
	if !ok {
		return nil
	}
	return override
}
