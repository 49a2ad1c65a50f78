package settings

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yml", `
model_regions: [CA_N, CA_S]
target_usd_year: 2020
`)

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := asStringSlice(doc["model_regions"]); len(got) != 2 || got[0] != "CA_N" {
		t.Errorf("model_regions = %v", doc["model_regions"])
	}
	if doc["target_usd_year"] != 2020 {
		t.Errorf("target_usd_year = %v, want 2020", doc["target_usd_year"])
	}
}

func TestLoadDirectoryLastWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a_base.yml", "x: 1\ny: 1\n")
	writeFile(t, dir, "b_override.yml", "y: 2\nz: 3\n")

	doc, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc["x"] != 1 || doc["y"] != 2 || doc["z"] != 3 {
		t.Errorf("merged document = %v, want x=1 y=2 z=3", doc)
	}
}

func TestLoadDirectoryWithTOMLMember(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "base.yml", "x: 1\n")
	writeFile(t, dir, "extra.toml", "y = 2\n")
	writeFile(t, dir, "notes.txt", "ignored\n")

	doc, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc["x"] != 1 {
		t.Errorf("x = %v, want 1", doc["x"])
	}
	if got, ok := doc["y"].(int64); !ok || got != 2 {
		t.Errorf("y = %v (%T), want 2 from the toml member", doc["y"], doc["y"])
	}
}

func TestLoadNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "no-such-path"), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoadResolvesInputFolder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yml", "input_folder: extra_inputs\n")

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := filepath.Join(dir, "extra_inputs")
	if doc["input_folder"] != want {
		t.Errorf("input_folder = %v, want %v", doc["input_folder"], want)
	}
}

func TestLoadExpandsWildcardRegions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yml", `
model_regions: [A, B]
renewables_clusters:
  - region: all
    technology: solarpv
`)

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	clusters := clustersOf(doc)
	if len(clusters) != 2 {
		t.Fatalf("got %d cluster entries, want 2: %v", len(clusters), clusters)
	}
}

func TestLoadLegacyNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yml", "data_years: [2019, 2020]\n")

	var warnings bytes.Buffer
	doc, err := Load(path, &warnings)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := doc["eia_data_years"]; !ok {
		t.Errorf("eia_data_years not populated from legacy data_years")
	}
	if !strings.Contains(warnings.String(), "data_years") {
		t.Errorf("expected a rename warning, got %q", warnings.String())
	}
}

func TestLoadDatabasePrefix(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yml", "PUDL_DB: /data/pudl.sqlite\n")

	doc, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, _ := doc["PUDL_DB"].(string)
	if !strings.HasPrefix(got, "sqlite:") || !strings.Contains(got, "/data/pudl.sqlite") {
		t.Errorf("PUDL_DB = %q, want a sqlite connection string", got)
	}
	if _, ok := doc["PG_DB"]; ok {
		t.Errorf("absent PG_DB should stay absent")
	}
}

func TestSQLitePrefix(t *testing.T) {
	t.Parallel()

	wantPrefix := "sqlite:////"
	if runtime.GOOS == "windows" {
		wantPrefix = "sqlite:///"
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare path gains prefix", in: "/data/pudl.sqlite", want: wantPrefix + filepath.Clean("/data/pudl.sqlite")},
		{name: "already prefixed unchanged", in: "sqlite:////data/pudl.sqlite", want: "sqlite:////data/pudl.sqlite"},
		{name: "empty stays empty", in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SQLitePrefix(tt.in); got != tt.want {
				t.Errorf("SQLitePrefix(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
