package recipe

import (
	"fmt"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
)

// Stage is an ordered, append-only sequence of directives.
// Insertion order is emission order.
type Stage struct {
	directives []Directive
}

// NewStage creates a stage holding the given directives.
func NewStage(directives ...Directive) *Stage {
	s := &Stage{}
	return s.Add(directives...)
}

// Add appends directives to the stage and returns the stage.
func (s *Stage) Add(directives ...Directive) *Stage {
	s.directives = append(s.directives, directives...)
	return s
}

// Len returns the number of directives.
func (s *Stage) Len() int {
	return len(s.directives)
}

// Directives returns a copy of the directives in emission order.
func (s *Stage) Directives() []Directive {
	out := make([]Directive, len(s.directives))
	copy(out, s.directives)
	return out
}

// Base returns the directive that starts the stage, or nil.
func (s *Stage) Base() Base {
	for _, d := range s.directives {
		if b, ok := d.(Base); ok {
			return b
		}
	}
	return nil
}

// Name returns the stage alias declared by its base image.
func (s *Stage) Name() string {
	if b := s.Base(); b != nil {
		return b.StageName()
	}
	return ""
}

// Context returns the render context of the stage.
func (s *Stage) Context() Context {
	b := s.Base()
	if b == nil {
		return Context{Distro: DistroUbuntu18}
	}
	return Context{Distro: b.Distro(), Stage: b.StageName()}
}

// Instructions renders every directive of the stage in order.
func (s *Stage) Instructions() []Instruction {
	ctx := s.Context()
	var out []Instruction
	for _, d := range s.directives {
		out = append(out, d.Instructions(ctx)...)
	}
	return out
}

// Runtime returns a directive importing the runtime artifacts of this
// stage into another one. from must be the alias of this stage and the
// stage must already hold directives. The directives present at call
// time are captured; later additions to the stage are not projected.
func (s *Stage) Runtime(from string) (*RuntimeImport, error) {
	if len(s.directives) == 0 {
		return nil, oerrors.NewValidationError(
			"cannot import runtime artifacts from an empty stage",
			from, "from",
			"Populate the stage before referencing it")
	}
	if from == "" || from != s.Name() {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("stage %q does not match the stage alias %q", from, s.Name()),
			"runtime", "from",
			"Declare the alias on the stage base image")
	}
	return &RuntimeImport{
		from:       from,
		source:     s,
		directives: s.Directives(),
	}, nil
}

// Validate checks the stage layout: at least one directive, no nil
// directives and exactly one base image, preceded only by comments.
func (s *Stage) Validate() error {
	if len(s.directives) == 0 {
		return oerrors.NewValidationError("stage has no directives", "", "", "Start the stage with a base image")
	}

	bases := 0
	for i, d := range s.directives {
		if d == nil {
			return oerrors.NewValidationError("nil directive", fmt.Sprintf("directive %d", i), "", "")
		}
		if _, ok := d.(Base); ok {
			bases++
			continue
		}
		if bases == 0 && d.Kind() != KindComment {
			return oerrors.NewValidationError(
				fmt.Sprintf("%s directive precedes the base image", d.Kind()),
				fmt.Sprintf("directive %d", i), "",
				"Only comments may precede the base image of a stage")
		}
	}

	switch {
	case bases == 0:
		return oerrors.NewValidationError("stage has no base image", "", "", "Add a baseimage directive")
	case bases > 1:
		return oerrors.NewValidationError(
			fmt.Sprintf("stage has %d base images", bases), "", "",
			"Start a new stage for every base image")
	}
	return nil
}

// RuntimeImport projects the runtime artifacts of a previous stage.
type RuntimeImport struct {
	from       string
	source     *Stage
	directives []Directive
}

// Kind implements Directive.
func (r *RuntimeImport) Kind() Kind { return KindRuntime }

// From returns the alias of the source stage.
func (r *RuntimeImport) From() string { return r.from }

// Source returns the stage the artifacts are imported from.
func (r *RuntimeImport) Source() *Stage { return r.source }

// Describe implements Directive.
func (r *RuntimeImport) Describe() map[string]any {
	var kinds []string
	for _, d := range r.directives {
		if _, ok := d.(RuntimeProvider); ok {
			kinds = append(kinds, d.Kind().String())
		}
	}
	return map[string]any{
		"from":       r.from,
		"directives": kinds,
	}
}

// Instructions implements Directive.
func (r *RuntimeImport) Instructions(ctx Context) []Instruction {
	var out []Instruction
	for _, d := range r.directives {
		if rp, ok := d.(RuntimeProvider); ok {
			out = append(out, rp.RuntimeInstructions(ctx, r.from)...)
		}
	}
	return out
}
