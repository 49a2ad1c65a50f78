package settings

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteCaseSettings writes a resolved settings document to dir/fileName as
// YAML. The directory is created if needed and the file is written through
// a temporary name so a failed write never leaves a truncated document.
func WriteCaseSettings(doc Document, dir, fileName string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating case directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding case settings: %w", err)
	}

	path := filepath.Join(dir, fileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing case settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing case settings: %w", err)
	}
	return nil
}

// WriteResultsFile writes one finalized results table to the Inputs
// subfolder of a case directory.
func WriteResultsFile(header []string, rows [][]string, caseDir, fileName string) error {
	sub := filepath.Join(caseDir, "Inputs")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	f, err := os.Create(filepath.Join(sub, fileName))
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing results header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing results row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing results file: %w", err)
	}
	return f.Close()
}
