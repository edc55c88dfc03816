package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/hpcbase/internal/config"
	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/output"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(gc *GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hpcbase configuration",
		Long: `Manage the hpcbase configuration file.

The config path is resolved using precedence:
  --config flag > HPCBASE_CONFIG env > ~/.hpcbase/config.yaml`,
	}

	cmd.AddCommand(newConfigInitCmd(gc))
	cmd.AddCommand(newConfigVetCmd(gc))

	return cmd
}

func newConfigInitCmd(gc *GlobalConfig) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Write the default configuration file.

Examples:
  # Initialize configuration
  hpcbase config init

  # Overwrite existing configuration
  hpcbase config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(gc, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

func runConfigInit(gc *GlobalConfig, force bool) error {
	if err := config.WriteDefault(gc.Fs, gc.ConfigPath, force); err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("Configuration initialized at " + gc.ConfigPath))
	output.Println("Validate with: hpcbase config vet")
	return nil
}

func newConfigVetCmd(gc *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the hpcbase configuration file.

Checks performed:
  1. Config file exists at the resolved path
  2. Config file is YAML with known keys only
  3. Values are valid (format, singularity.version)
  4. The default recipe resolves`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigVet(gc)
		},
	}
}

func runConfigVet(gc *GlobalConfig) error {
	loader := config.NewLoaderFs(gc.Fs)
	path := gc.ConfigPath

	exists, err := loader.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if !exists {
		return oerrors.NewNotFoundError("configuration file not found", path,
			"Run 'hpcbase config init' to create default configuration")
	}
	output.Println(output.FormatVetCheck("Config file found", path))

	cfg, err := loader.Load(path)
	if err != nil {
		return err
	}
	output.Println(output.FormatVetCheck("Config file parsed", ""))

	if err := config.Validate(cfg); err != nil {
		var verrs config.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			output.Println(fmt.Sprintf("%s %s: %s", output.FormatStatus(output.StatusFailed), e.Field, e.Message))
		}
		exitErr := NewExitError(err, ExitValidationError)
		exitErr.Printed = true
		return exitErr
	}
	output.Println(output.FormatVetCheck("Values valid", ""))

	if cfg.Recipe != "" && !isRecipeFile(cfg.Recipe) {
		if _, err := gc.Catalog.Get(cfg.Recipe); err != nil {
			return err
		}
	}
	if cfg.Recipe != "" {
		output.Println(output.FormatVetCheck("Default recipe resolves", cfg.Recipe))
	}

	return nil
}
