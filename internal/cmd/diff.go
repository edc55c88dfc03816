package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/output"
	"github.com/opmodel/hpcbase/internal/recipe"
	"github.com/opmodel/hpcbase/internal/recipes"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd(gc *GlobalConfig) *cobra.Command {
	var values ValuesFlags

	cmd := &cobra.Command{
		Use:   "diff [recipe] -f values...",
		Short: "Show how values files change a built-in recipe",
		Long: `Compare a built-in recipe built from its default parameters with
the same recipe built with values files applied.

The comparison is YAML-aware and covers every stage and directive.

Examples:
  # Show what disabling CUDA changes
  hpcbase diff -f nocuda.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(gc, gc.recipeArg(args), values.Values)
		},
	}

	values.AddTo(cmd)
	return cmd
}

func runDiff(gc *GlobalConfig, arg string, valuesFiles []string) error {
	if len(valuesFiles) == 0 {
		return oerrors.NewValidationError("no values files given", "", "values",
			"Pass at least one values file with -f")
	}
	if isRecipeFile(arg) {
		return oerrors.NewValidationError("diff compares built-in recipes", arg, "",
			"Run 'hpcbase list' to see the built-in recipes")
	}

	entry, err := gc.Catalog.Get(arg)
	if err != nil {
		return err
	}

	before, err := manifestYAML(entry, recipes.DefaultParams())
	if err != nil {
		return err
	}
	params, err := loadParams(valuesFiles)
	if err != nil {
		return err
	}
	after, err := manifestYAML(entry, params)
	if err != nil {
		return err
	}

	report, count, err := output.DiffYAML(
		entry.Name+" (defaults)", before,
		strings.Join(valuesFiles, ", "), after,
		output.ColorEnabled(),
	)
	if err != nil {
		return fmt.Errorf("comparing %s: %w", entry.Name, err)
	}

	output.RecipeLogger(entry.Name).Debug("diff computed", "differences", count)
	output.Println(output.RenderDiff(report, count))
	return nil
}

func manifestYAML(entry recipes.Entry, params recipes.Params) ([]byte, error) {
	r, err := entry.Build(params)
	if err != nil {
		return nil, err
	}
	return output.ManifestYAML(recipe.BuildManifest(r))
}
