package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fernfell/gridgen/internal/scenario"
	"github.com/fernfell/gridgen/internal/settings"
	"github.com/fernfell/gridgen/internal/ui"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Expand scenario settings and write one document per case",
	RunE: func(cmd *cobra.Command, args []string) error {
		settingsPath, _ := cmd.Flags().GetString("settings")
		if settingsPath == "" {
			return fmt.Errorf("the --settings flag is required")
		}
		outDir, _ := cmd.Flags().GetString("out")
		watch, _ := cmd.Flags().GetBool("watch")

		printer := ui.New()
		if err := runResolve(settingsPath, outDir, printer); err != nil {
			if !watch {
				return err
			}
			printer.Error("%v", err)
		}
		if !watch {
			return nil
		}

		watchDir := settingsPath
		if info, err := os.Stat(settingsPath); err == nil && !info.IsDir() {
			watchDir = filepath.Dir(settingsPath)
		}
		w, err := settings.NewWatcher(watchDir)
		if err != nil {
			return fmt.Errorf("starting settings watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("starting settings watcher: %w", err)
		}
		printer.Info("watching %s for settings changes", watchDir)

		for change := range w.Changes {
			printer.Info("settings change detected: %s", change.File)
			if err := runResolve(settingsPath, outDir, printer); err != nil {
				printer.Error("%v", err)
			}
		}
		return nil
	},
}

func runResolve(settingsPath, outDir string, printer *ui.Printer) error {
	warnLog := printer.WarningWriter()

	doc, err := settings.Load(settingsPath, warnLog)
	if err != nil {
		return err
	}

	p, err := settings.DecodeParams(doc)
	if err != nil {
		return err
	}
	if p.ScenarioDefinitionsFn == "" {
		return fmt.Errorf("%w: the settings parameter 'scenario_definitions_fn' is required", settings.ErrMissingConfiguration)
	}

	defs, err := scenario.LoadDefinitions(filepath.Join(p.InputFolder, p.ScenarioDefinitionsFn))
	if err != nil {
		return err
	}

	resolved, err := scenario.NewExpander(warnLog).Expand(doc, defs)
	if err != nil {
		return err
	}

	years := make([]int, 0, len(resolved))
	for year := range resolved {
		years = append(years, year)
	}
	sort.Ints(years)

	cases := 0
	for _, year := range years {
		ids := make([]string, 0, len(resolved[year]))
		for id := range resolved[year] {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			caseDoc := resolved[year][id]
			dir := filepath.Join(outDir, strconv.Itoa(year), fmt.Sprint(caseDoc["case_name"]))
			if err := settings.WriteCaseSettings(caseDoc, dir, "case_settings.yml"); err != nil {
				return err
			}
			printer.Info("wrote %s", filepath.Join(dir, "case_settings.yml"))
			cases++
		}
	}
	printer.Success("resolved %d case(s) across %d planning year(s)", cases, len(years))
	return nil
}

func init() {
	resolveCmd.Flags().StringP("out", "o", "gridgen-cases", "output directory for resolved case settings")
	resolveCmd.Flags().Bool("watch", false, "re-run resolution when settings files change")
	rootCmd.AddCommand(resolveCmd)
}
