package config

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
)

// Config holds process-wide configuration for a gridgen run: warehouse
// connection strings and the locations of external resource data. Values
// are populated from .gridgen.yaml, GRIDGEN_* env vars, and CLI flags.
type Config struct {
	PudlDB                string `mapstructure:"pudl_db"`
	PgDB                  string `mapstructure:"pg_db"`
	EFSData               string `mapstructure:"efs_data"`
	ResourceGroups        string `mapstructure:"resource_groups"`
	DistributedGenData    string `mapstructure:"distributed_gen_data"`
	ResourceGroupProfiles string `mapstructure:"resource_group_profiles"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("pudl_db", "")
	viper.SetDefault("pg_db", "")
	viper.SetDefault("efs_data", "")
	viper.SetDefault("resource_groups", "")
	viper.SetDefault("distributed_gen_data", "")
	viper.SetDefault("resource_group_profiles", "")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// WarehouseDSN returns the connection string for the reference warehouse,
// falling back to the PUDL database with a warning when no dedicated
// warehouse path is configured.
func (c Config) WarehouseDSN(logger io.Writer) string {
	if c.PgDB != "" {
		return c.PgDB
	}
	if c.PudlDB != "" && logger != nil {
		fmt.Fprintf(logger, "warning: no pg_db warehouse path was provided or found in the environment; using the pudl_db path instead\n")
	}
	return c.PudlDB
}
