package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fernfell/gridgen/internal/settings"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadDefinitions(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "scenarios.csv", `case_id,year,ccs_capex,natgas_price
1,2030,mid,reference
2,2030,low,reference
1,2040,mid,high
`)

	defs, err := LoadDefinitions(path)
	if err != nil {
		t.Fatalf("LoadDefinitions() error = %v", err)
	}

	if !reflect.DeepEqual(defs.Categories, []string{"ccs_capex", "natgas_price"}) {
		t.Errorf("Categories = %v", defs.Categories)
	}
	if !reflect.DeepEqual(defs.Years(), []int{2030, 2040}) {
		t.Errorf("Years() = %v", defs.Years())
	}
	if !reflect.DeepEqual(defs.CaseIDs(2030), []string{"1", "2"}) {
		t.Errorf("CaseIDs(2030) = %v", defs.CaseIDs(2030))
	}
	if !reflect.DeepEqual(defs.CaseIDs(2040), []string{"1"}) {
		t.Errorf("CaseIDs(2040) = %v", defs.CaseIDs(2040))
	}

	if v, ok := defs.Value("2", 2030, "ccs_capex"); !ok || v != "low" {
		t.Errorf("Value(2, 2030, ccs_capex) = %q, %v", v, ok)
	}
	if v, ok := defs.Value("1", 2040, "natgas_price"); !ok || v != "high" {
		t.Errorf("Value(1, 2040, natgas_price) = %q, %v", v, ok)
	}
	if _, ok := defs.Value("9", 2030, "ccs_capex"); ok {
		t.Errorf("unknown case id should report !ok")
	}
}

func TestLoadDefinitionsErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{
			name:    "missing file",
			path:    filepath.Join(dir, "nope.csv"),
			wantErr: settings.ErrNotFound,
		},
		{
			name:    "missing year column",
			path:    writeFile(t, dir, "no_year.csv", "case_id,ccs_capex\n1,mid\n"),
			wantErr: settings.ErrMissingField,
		},
		{
			name:    "missing case_id column",
			path:    writeFile(t, dir, "no_case.csv", "year,ccs_capex\n2030,mid\n"),
			wantErr: settings.ErrMissingField,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadDefinitions(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadDefinitions() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadCaseNames(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "case_names.csv", `case_id,case_name
1,base case
2,high ccs cost
`)

	names, err := LoadCaseNames(path)
	if err != nil {
		t.Fatalf("LoadCaseNames() error = %v", err)
	}
	want := map[string]string{"1": "base_case", "2": "high_ccs_cost"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("LoadCaseNames() = %v, want %v", names, want)
	}
}

func TestLoadCaseNamesMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCaseNames(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, settings.ErrNotFound) {
		t.Errorf("LoadCaseNames() error = %v, want ErrNotFound", err)
	}
}
