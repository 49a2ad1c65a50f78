// Package scenario expands a base settings document into one fully resolved
// settings document per (planning year, case) pair, driven by the scenario
// definition table and the settings_management overrides.
package scenario

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/fernfell/gridgen/internal/settings"
)

// DefinitionRow is one row of the scenario definition table: the value
// label chosen for each category for one (case, year).
type DefinitionRow struct {
	CaseID string
	Year   int
	Values map[string]string // category -> value label
}

// Definitions holds the parsed scenario definition table.
type Definitions struct {
	Categories []string // Category columns in header order.
	Rows       []DefinitionRow
}

// LoadDefinitions reads a scenario definition CSV. The header must include
// case_id and year; every other column is a category.
func LoadDefinitions(path string) (*Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: scenario definitions file %s", settings.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening scenario definitions: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing scenario definitions: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: scenario definitions file %s has no header row", settings.ErrMissingField, path)
	}

	header := records[0]
	caseCol, yearCol := -1, -1
	var categories []string
	catCols := make(map[int]string)
	for i, col := range header {
		switch col {
		case "case_id":
			caseCol = i
		case "year":
			yearCol = i
		default:
			categories = append(categories, col)
			catCols[i] = col
		}
	}
	if caseCol < 0 || yearCol < 0 {
		return nil, fmt.Errorf("%w: scenario definitions file must have case_id and year columns", settings.ErrMissingField)
	}

	defs := &Definitions{Categories: categories}
	for n, record := range records[1:] {
		year, err := strconv.Atoi(strings.TrimSpace(record[yearCol]))
		if err != nil {
			return nil, fmt.Errorf("scenario definitions row %d: parsing year %q: %w", n+2, record[yearCol], err)
		}
		row := DefinitionRow{
			CaseID: strings.TrimSpace(record[caseCol]),
			Year:   year,
			Values: make(map[string]string, len(catCols)),
		}
		for i, category := range catCols {
			if i < len(record) {
				row.Values[category] = strings.TrimSpace(record[i])
			}
		}
		defs.Rows = append(defs.Rows, row)
	}
	return defs, nil
}

// Years returns the distinct years in row order.
func (d *Definitions) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, row := range d.Rows {
		if !seen[row.Year] {
			seen[row.Year] = true
			years = append(years, row.Year)
		}
	}
	return years
}

// CaseIDs returns the distinct case ids defined for a year, in row order.
func (d *Definitions) CaseIDs(year int) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, row := range d.Rows {
		if row.Year != year || seen[row.CaseID] {
			continue
		}
		seen[row.CaseID] = true
		ids = append(ids, row.CaseID)
	}
	return ids
}

// Value returns the value label a case chose for a category in a year.
func (d *Definitions) Value(caseID string, year int, category string) (string, bool) {
	for _, row := range d.Rows {
		if row.CaseID == caseID && row.Year == year {
			v, ok := row.Values[category]
			return v, ok
		}
	}
	return "", false
}

// LoadCaseNames reads the case id to case name CSV. The first column is the
// id, the second the name; spaces in names are replaced with underscores.
func LoadCaseNames(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: case name file %s", settings.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening case name file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing case name file: %w", err)
	}

	names := make(map[string]string)
	for n, record := range records {
		if n == 0 {
			continue // header
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("case name file row %d needs an id and a name", n+1)
		}
		id := strings.TrimSpace(record[0])
		name := strings.ReplaceAll(strings.TrimSpace(record[1]), " ", "_")
		names[id] = name
	}
	return names, nil
}
