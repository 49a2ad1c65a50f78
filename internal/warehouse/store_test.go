package warehouse

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func seedWarehouse(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "warehouse.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening seed database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE technology_costs_nrelatb (
			atb_year INTEGER,
			technology TEXT,
			tech_detail TEXT,
			cost_case TEXT
		)`,
		`INSERT INTO technology_costs_nrelatb VALUES
			(2022, 'UtilityPV', 'Class1', 'Moderate'),
			(2022, 'UtilityPV', 'Class1', 'Advanced'),
			(2022, 'LandbasedWind', 'Class3', 'Moderate'),
			(2020, 'UtilityPV', 'Class1', 'Mid')`,
		`CREATE TABLE regions_entity_epaipm (region_id_epaipm TEXT)`,
		`INSERT INTO regions_entity_epaipm VALUES ('CA_N'), ('CA_S'), ('WECC_AZ')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seeding warehouse: %v", err)
		}
	}
	return path
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), "sqlite:///"+seedWarehouse(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDistinctCostCases(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	cases, err := store.DistinctCostCases(context.Background(), 2022)
	if err != nil {
		t.Fatalf("DistinctCostCases() error = %v", err)
	}
	sort.Strings(cases)
	want := []string{"Advanced", "Moderate"}
	if !reflect.DeepEqual(cases, want) {
		t.Errorf("DistinctCostCases(2022) = %v, want %v", cases, want)
	}

	cases, err = store.DistinctCostCases(context.Background(), 1999)
	if err != nil {
		t.Fatalf("DistinctCostCases() error = %v", err)
	}
	if len(cases) != 0 {
		t.Errorf("DistinctCostCases(1999) = %v, want none", cases)
	}
}

func TestTechnologyExists(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	tests := []struct {
		technology string
		techDetail string
		want       bool
	}{
		{"UtilityPV", "Class1", true},
		{"LandbasedWind", "Class3", true},
		{"UtilityPV", "Class9", false},
		{"Fusion", "Class1", false},
	}
	for _, tt := range tests {
		tt := tt
		got, err := store.TechnologyExists(context.Background(), tt.technology, tt.techDetail)
		if err != nil {
			t.Fatalf("TechnologyExists(%s, %s) error = %v", tt.technology, tt.techDetail, err)
		}
		if got != tt.want {
			t.Errorf("TechnologyExists(%s, %s) = %v, want %v", tt.technology, tt.techDetail, got, tt.want)
		}
	}
}

func TestRegionIDs(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	regions, err := store.RegionIDs(context.Background())
	if err != nil {
		t.Fatalf("RegionIDs() error = %v", err)
	}
	sort.Strings(regions)
	want := []string{"CA_N", "CA_S", "WECC_AZ"}
	if !reflect.DeepEqual(regions, want) {
		t.Errorf("RegionIDs() = %v, want %v", regions, want)
	}
}

func TestSplitDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		dsn        string
		wantDriver string
		wantSource string
	}{
		{name: "mysql scheme", dsn: "mysql://user:pw@tcp(db:3306)/pudl", wantDriver: "mysql", wantSource: "user:pw@tcp(db:3306)/pudl"},
		{name: "bare mysql dsn", dsn: "user:pw@tcp(db:3306)/pudl", wantDriver: "mysql", wantSource: "user:pw@tcp(db:3306)/pudl"},
		{name: "sqlite absolute uri", dsn: "sqlite:////data/pudl.sqlite", wantDriver: "sqlite", wantSource: "/data/pudl.sqlite"},
		{name: "sqlite relative uri", dsn: "sqlite:///pudl.sqlite", wantDriver: "sqlite", wantSource: "pudl.sqlite"},
		{name: "bare path", dsn: "/data/pudl.sqlite", wantDriver: "sqlite", wantSource: "/data/pudl.sqlite"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			driver, source := splitDSN(tt.dsn)
			if driver != tt.wantDriver || source != tt.wantSource {
				t.Errorf("splitDSN(%q) = (%q, %q), want (%q, %q)", tt.dsn, driver, source, tt.wantDriver, tt.wantSource)
			}
		})
	}
}
