package blocks

import (
	"fmt"
	"regexp"

	"github.com/opmodel/hpcbase/internal/recipe"
)

var envName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Environment sets environment variables for the rest of the stage and
// the resulting image.
type Environment struct {
	vars []recipe.EnvVar
}

// NewEnvironment returns an environment directive. Variables are emitted
// in name order.
func NewEnvironment(vars map[string]string) (*Environment, error) {
	if len(vars) == 0 {
		return nil, validationError(recipe.KindEnvironment, "environment directive has no variables", "variables", "")
	}
	for name, value := range vars {
		if !envName.MatchString(name) {
			return nil, validationError(recipe.KindEnvironment,
				fmt.Sprintf("invalid variable name %q", name), "variables",
				"Names consist of letters, digits and underscores and do not start with a digit")
		}
		if hasLineBreak(value) {
			return nil, validationError(recipe.KindEnvironment,
				fmt.Sprintf("value of %s spans several lines", name), "variables", "")
		}
	}
	return &Environment{vars: sortedEnv(vars)}, nil
}

// Kind implements recipe.Directive.
func (e *Environment) Kind() recipe.Kind { return recipe.KindEnvironment }

// Variables returns the assignments in emission order.
func (e *Environment) Variables() []recipe.EnvVar {
	out := make([]recipe.EnvVar, len(e.vars))
	copy(out, e.vars)
	return out
}

// Describe implements recipe.Directive.
func (e *Environment) Describe() map[string]any {
	vars := make(map[string]any, len(e.vars))
	for _, v := range e.vars {
		vars[v.Name] = v.Value
	}
	return map[string]any{"variables": vars}
}

// Instructions implements recipe.Directive.
func (e *Environment) Instructions(recipe.Context) []recipe.Instruction {
	return []recipe.Instruction{recipe.Env(e.vars...)}
}
