package recipe

import (
	"fmt"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
)

// Recipe is a named, ordered list of stages.
type Recipe struct {
	Name        string
	Description string

	stages []*Stage
}

// New creates an empty recipe.
func New(name, description string) *Recipe {
	return &Recipe{Name: name, Description: description}
}

// AddStage appends stages to the recipe and returns the recipe.
func (r *Recipe) AddStage(stages ...*Stage) *Recipe {
	r.stages = append(r.stages, stages...)
	return r
}

// Stages returns the stages in order.
func (r *Recipe) Stages() []*Stage {
	out := make([]*Stage, len(r.stages))
	copy(out, r.stages)
	return out
}

// Validate checks every stage and the references between stages.
// A runtime import must reference a stage that appears earlier in the
// recipe, and stage aliases must be unique.
func (r *Recipe) Validate() error {
	if len(r.stages) == 0 {
		return oerrors.NewValidationError("recipe has no stages", r.Name, "", "")
	}

	seen := make(map[string]int)
	for i, s := range r.stages {
		if s == nil {
			return oerrors.NewValidationError("nil stage", fmt.Sprintf("%s: stage %d", r.Name, i), "", "")
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}

		if name := s.Name(); name != "" {
			if prev, dup := seen[name]; dup {
				return oerrors.NewValidationError(
					fmt.Sprintf("stage alias %q already used by stage %d", name, prev),
					fmt.Sprintf("%s: stage %d", r.Name, i), "as", "")
			}
			seen[name] = i
		}

		for j, d := range s.directives {
			imp, ok := d.(*RuntimeImport)
			if !ok {
				continue
			}
			if !r.precedes(imp.source, i) {
				return oerrors.NewValidationError(
					fmt.Sprintf("runtime import references stage %q which is not an earlier stage", imp.from),
					fmt.Sprintf("%s: stage %d directive %d", r.Name, i, j), "from",
					"Import runtime artifacts only from stages declared before this one")
			}
		}
	}
	return nil
}

func (r *Recipe) precedes(stage *Stage, index int) bool {
	for i := 0; i < index; i++ {
		if r.stages[i] == stage {
			return true
		}
	}
	return false
}
