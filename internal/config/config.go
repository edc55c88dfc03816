// Package config provides configuration loading and management.
package config

import (
	"github.com/opmodel/hpcbase/internal/recipes"
	"github.com/opmodel/hpcbase/internal/render"
)

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// SingularityConfig contains Singularity rendering settings.
type SingularityConfig struct {
	// Version is the Singularity version definitions are written for.
	// Multi-stage definitions need 3.2 or later.
	// Env: HPCBASE_SINGULARITY_VERSION, Default: "3.2"
	Version string `mapstructure:"version" yaml:"version,omitempty"`
}

// Config represents the hpcbase CLI configuration.
// Loaded from ~/.hpcbase/config.yaml.
type Config struct {
	// Format is the default container specification format.
	// Env: HPCBASE_FORMAT, Default: "docker"
	Format string `mapstructure:"format" yaml:"format,omitempty"`

	// Recipe is the recipe rendered when none is named on the command line.
	// It may be a built-in recipe name or a path to a recipe document.
	// Env: HPCBASE_RECIPE, Default: "gnu-mvapich2-hdf5"
	Recipe string `mapstructure:"recipe" yaml:"recipe,omitempty"`

	// Log contains logging-related settings.
	Log LogConfig `mapstructure:"log" yaml:"log,omitempty"`

	// Singularity contains Singularity rendering settings.
	Singularity SingularityConfig `mapstructure:"singularity" yaml:"singularity,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `hpcbase config init` to generate the initial config file.
func DefaultConfig() *Config {
	timestamps := true
	return &Config{
		Format: render.FormatDocker.String(),
		Recipe: recipes.HPCBaseName,
		Log: LogConfig{
			Timestamps: &timestamps,
		},
		Singularity: SingularityConfig{
			Version: render.DefaultSingularityVersion,
		},
	}
}
