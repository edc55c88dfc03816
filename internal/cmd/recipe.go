package cmd

import (
	"path/filepath"
	"strings"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/loader"
	"github.com/opmodel/hpcbase/internal/output"
	"github.com/opmodel/hpcbase/internal/recipe"
	"github.com/opmodel/hpcbase/internal/recipes"
)

// isRecipeFile reports whether arg names a recipe document rather than
// a built-in recipe.
func isRecipeFile(arg string) bool {
	return loader.Supported(arg) || strings.ContainsRune(arg, filepath.Separator)
}

// recipeArg returns the first positional argument or the resolved default.
func (gc *GlobalConfig) recipeArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return gc.recipeName()
}

// loadRecipe builds the recipe named by arg. Recipe documents are loaded
// from disk; built-in recipes are built from their default parameters
// overridden by valuesFiles.
func (gc *GlobalConfig) loadRecipe(arg string, valuesFiles []string) (*recipe.Recipe, error) {
	if isRecipeFile(arg) {
		if len(valuesFiles) > 0 {
			return nil, oerrors.NewValidationError(
				"values files apply to built-in recipes only", arg, "values",
				"Edit the recipe document instead, or name a built-in recipe")
		}
		output.Debug("loading recipe document", "path", arg)
		return loader.LoadRecipe(arg)
	}

	entry, err := gc.Catalog.Get(arg)
	if err != nil {
		return nil, err
	}
	params, err := loadParams(valuesFiles)
	if err != nil {
		return nil, err
	}
	output.Debug("building recipe", "name", entry.Name, "values", len(valuesFiles))
	return entry.Build(params)
}

// loadParams merges values files over the default parameters.
func loadParams(valuesFiles []string) (recipes.Params, error) {
	defaults := recipes.DefaultParams()
	if len(valuesFiles) == 0 {
		return defaults, nil
	}

	v, err := loader.NewValuesLoader(nil).LoadValues(valuesFiles...)
	if err != nil {
		return recipes.Params{}, err
	}
	return loader.DecodeParams(v, defaults)
}
