package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// legacyNames maps renamed settings parameters to their current names. The
// loader copies the value under the new name and warns; the old key is left
// in place so downstream readers of either name keep working.
var legacyNames = map[string]string{
	"historical_load_region_maps": "historical_load_region_map",
	"demand_response_resources":   "flexible_demand_resources",
	"data_years":                  "eia_data_years",
}

// databaseParams are connection-string parameters rewritten with the
// platform sqlite URI prefix when it is missing.
var databaseParams = []string{"PUDL_DB", "PG_DB"}

// pathParams are filesystem-path parameters normalized with filepath
// semantics on load.
var pathParams = []string{
	"EFS_DATA",
	"RESOURCE_GROUPS",
	"DISTRIBUTED_GEN_DATA",
	"RESOURCE_GROUP_PROFILES",
}

// Load reads a settings document from a single file or a directory of
// settings files (*.yml, *.yaml, *.toml). Directory members are read in
// sorted name order and unioned by top-level key, last loaded wins; the
// union is a shallow key replacement, so any member order that reaches the
// same final key set produces the same document.
//
// After reading, Load resolves input_folder relative to the parent of the
// settings path, expands wildcard "all" region tags, rewrites database
// connection strings with the sqlite URI prefix, and normalizes legacy
// parameter names, warning once per rename. Warnings go to logger, which
// may be nil.
func Load(path string, logger io.Writer) (Document, error) {
	if logger == nil {
		logger = io.Discard
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: settings path %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading settings path: %w", err)
	}

	var doc Document
	if info.IsDir() {
		doc, err = loadDir(path)
	} else {
		doc, err = parseFile(path)
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}

	if v, ok := doc["input_folder"]; ok {
		folder := fmt.Sprint(v)
		if folder != "" && !filepath.IsAbs(folder) {
			doc["input_folder"] = filepath.Join(filepath.Dir(path), folder)
		}
	}

	if err := ExpandAllRegions(doc, logger); err != nil {
		return nil, err
	}

	for _, key := range databaseParams {
		if s, ok := doc[key].(string); ok && s != "" {
			doc[key] = SQLitePrefix(s)
		}
	}
	for _, key := range pathParams {
		if s, ok := doc[key].(string); ok && s != "" {
			doc[key] = filepath.Clean(s)
		}
	}

	fixLegacyNames(doc, logger)
	return doc, nil
}

func loadDir(dir string) (Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading settings directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !recognizedExt(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	doc := Document{}
	for _, name := range names {
		part, err := parseFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		for k, v := range part {
			doc[k] = v
		}
	}
	return doc, nil
}

func parseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
	}

	doc := Document{}
	for k, v := range raw {
		doc[k] = normalizeValue(v)
	}
	return doc, nil
}

func recognizedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml", ".toml":
		return true
	}
	return false
}

// SQLitePrefix returns the path as a sqlite connection string, adding the
// platform-specific URI prefix when it is not already present. Windows
// paths carry their own drive-rooted leading slash count.
func SQLitePrefix(dbPath string) string {
	if dbPath == "" {
		return ""
	}
	if strings.Contains(dbPath, "sqlite:") {
		return dbPath
	}
	prefix := "sqlite:////"
	if runtime.GOOS == "windows" {
		prefix = "sqlite:///"
	}
	return prefix + filepath.Clean(dbPath)
}

func fixLegacyNames(doc Document, logger io.Writer) {
	olds := make([]string, 0, len(legacyNames))
	for k := range legacyNames {
		olds = append(olds, k)
	}
	sort.Strings(olds)

	for _, old := range olds {
		v, ok := doc[old]
		if !ok {
			continue
		}
		current := legacyNames[old]
		doc[current] = v
		fmt.Fprintf(logger, "warning: the settings parameter named %s has been changed to %s; please correct it in your settings file\n", old, current)
	}
}
