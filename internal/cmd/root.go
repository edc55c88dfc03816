package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/opmodel/hpcbase/internal/config"
	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/output"
	"github.com/opmodel/hpcbase/internal/recipes"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is created once by NewRootCmd and passed to every sub-command constructor.
type GlobalConfig struct {
	// Config is the loaded config file; nil when it could not be read.
	Config *config.Config

	// ConfigPath is the resolved config file path.
	ConfigPath string

	// Resolved holds every configuration value after precedence.
	Resolved *config.Resolved

	// Fs is the filesystem config files and build artifacts are written to.
	Fs afero.Fs

	// Catalog holds the built-in recipes.
	Catalog *recipes.Catalog

	Verbose bool

	configFlag string
	timestamps bool
}

// NewGlobalConfig returns a GlobalConfig using the OS filesystem and the
// default recipe catalog.
func NewGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Fs:      afero.NewOsFs(),
		Catalog: recipes.Default(),
	}
}

// NewRootCmd creates the root command for the hpcbase CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(NewGlobalConfig())
}

func newRootCmd(gc *GlobalConfig) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hpcbase",
		Short: "Generate HPC container build files",
		Long: `hpcbase generates Dockerfiles and Singularity definition files for
HPC base images from composable building blocks: compilers, InfiniBand
drivers, MPI and HDF5.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return gc.initialize(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&gc.configFlag, "config", "", "Path to config file (env: HPCBASE_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&gc.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&gc.timestamps, "timestamps", true, "Show timestamps in log output (env: HPCBASE_LOG_TIMESTAMPS)")

	rootCmd.AddCommand(NewListCmd(gc))
	rootCmd.AddCommand(NewInspectCmd(gc))
	rootCmd.AddCommand(NewBuildCmd(gc))
	rootCmd.AddCommand(NewDiffCmd(gc))
	rootCmd.AddCommand(NewConfigCmd(gc))
	rootCmd.AddCommand(NewVersionCmd(gc))

	return rootCmd
}

// flagKeys maps flags to the configuration keys they override.
var flagKeys = map[string]config.Key{
	"format":              config.KeyFormat,
	"timestamps":          config.KeyLogTimestamps,
	"singularity-version": config.KeySingularityVersion,
}

// initialize loads the config file, resolves every value and sets up logging.
func (gc *GlobalConfig) initialize(cmd *cobra.Command) error {
	pathResult, err := config.ResolveConfigPath(gc.configFlag)
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not resolve config path")
	}
	gc.ConfigPath = pathResult.ConfigPath

	// A broken config file must not block commands that don't need it;
	// config vet reports the details.
	cfg, loadErr := config.NewLoaderFs(gc.Fs).Load(gc.ConfigPath)
	gc.Config = cfg

	flags := make(map[config.Key]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			flags[key] = f.Value.String()
		}
	})

	resolved, err := config.ResolveAll(config.ResolveAllOptions{
		Flags:  flags,
		Config: cfg,
	})
	if err != nil {
		return err
	}
	gc.Resolved = resolved

	output.SetupLogging(output.LogConfig{
		Verbose:    gc.Verbose,
		Timestamps: output.BoolPtr(resolved.Timestamps),
	})

	if loadErr != nil {
		output.Warn("ignoring config file", "path", gc.ConfigPath)
		output.Debug("config load error", "error", loadErr)
	}
	if gc.Verbose {
		output.Debug("initializing CLI", "config", gc.ConfigPath, "config_source", pathResult.Source)
		config.LogResolvedValues(resolved.Values)
	}

	return nil
}

// recipeName returns the recipe used when none is named on the command line.
func (gc *GlobalConfig) recipeName() string {
	if gc.Resolved != nil && gc.Resolved.Recipe != "" {
		return gc.Resolved.Recipe
	}
	return recipes.HPCBaseName
}
