package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/output"
	"github.com/opmodel/hpcbase/internal/recipe"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd(gc *GlobalConfig) *cobra.Command {
	var (
		values       ValuesFlags
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "inspect [recipe|file]",
		Short: "Show the stages and directives of a recipe",
		Long: `Show the stages and directives of a recipe in emission order.

The recipe is a built-in recipe name or a recipe document
(.cue, .yaml, .json). Without an argument the configured default
recipe is used.

Examples:
  # Show the default recipe as YAML
  hpcbase inspect

  # Show a table with overridden parameters
  hpcbase inspect gnu-mvapich2-hdf5 -f values.yaml -o table`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(gc, gc.recipeArg(args), values.Values, outputFormat)
		},
	}

	values.AddTo(cmd)
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml",
		"Output format: "+strings.Join(output.ValidFormats(), ", "))

	return cmd
}

func runInspect(gc *GlobalConfig, arg string, valuesFiles []string, outputFormat string) error {
	format, ok := output.ParseOutputFormat(outputFormat)
	if !ok {
		return oerrors.NewValidationError(
			fmt.Sprintf("unknown output format %q", outputFormat), "", "output",
			"Valid formats: "+strings.Join(output.ValidFormats(), ", "))
	}

	r, err := gc.loadRecipe(arg, valuesFiles)
	if err != nil {
		return err
	}

	return output.WriteManifest(recipe.BuildManifest(r), output.ManifestOptions{
		Format: format,
		Writer: output.Stdout(),
	})
}
