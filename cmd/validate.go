package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fernfell/gridgen/internal/config"
	"github.com/fernfell/gridgen/internal/settings"
	"github.com/fernfell/gridgen/internal/ui"
	"github.com/fernfell/gridgen/internal/warehouse"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Cross-check settings against the reference warehouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		settingsPath, _ := cmd.Flags().GetString("settings")
		if settingsPath == "" {
			return fmt.Errorf("the --settings flag is required")
		}
		dsnFlag, _ := cmd.Flags().GetString("db")

		printer := ui.New()
		warnLog := printer.WarningWriter()

		doc, err := settings.Load(settingsPath, warnLog)
		if err != nil {
			return err
		}

		dsn := dsnFlag
		if dsn == "" {
			if s, ok := doc["PG_DB"].(string); ok {
				dsn = s
			}
		}
		if dsn == "" {
			dsn = config.Load().WarehouseDSN(warnLog)
		}
		if dsn == "" {
			return fmt.Errorf("%w: no warehouse database configured; set PG_DB in your settings, the GRIDGEN_PG_DB environment variable, or pass --db", settings.ErrMissingConfiguration)
		}

		store, err := warehouse.Open(cmd.Context(), dsn)
		if err != nil {
			return err
		}
		defer store.Close()

		v := &settings.Validator{Store: store, Logger: warnLog}
		if err := v.Check(cmd.Context(), doc); err != nil {
			printer.Error("settings validation failed")
			return err
		}
		printer.Success("settings are consistent with the reference warehouse")
		return nil
	},
}

func init() {
	validateCmd.Flags().String("db", "", "warehouse connection string (sqlite path or mysql DSN)")
	rootCmd.AddCommand(validateCmd)
}
