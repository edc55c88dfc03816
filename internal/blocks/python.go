package blocks

import (
	"github.com/opmodel/hpcbase/internal/recipe"
)

// PythonOptions configures the Python directive. The zero value installs
// both interpreters without development headers.
type PythonOptions struct {
	DisablePython2 bool `json:"disablePython2,omitempty"`
	DisablePython3 bool `json:"disablePython3,omitempty"`
	Devel          bool `json:"devel,omitempty"`
}

// Python installs the distribution Python interpreters.
type Python struct {
	opts PythonOptions
}

// NewPython returns a Python directive.
func NewPython(opts PythonOptions) (*Python, error) {
	if opts.DisablePython2 && opts.DisablePython3 {
		return nil, validationError(recipe.KindPython, "both Python 2 and Python 3 are disabled", "disablePython3",
			"Enable at least one interpreter")
	}
	return &Python{opts: opts}, nil
}

// Kind implements recipe.Directive.
func (p *Python) Kind() recipe.Kind { return recipe.KindPython }

// Describe implements recipe.Directive.
func (p *Python) Describe() map[string]any {
	return map[string]any{
		"python2": !p.opts.DisablePython2,
		"python3": !p.opts.DisablePython3,
		"devel":   p.opts.Devel,
	}
}

func (p *Python) packages(distro recipe.Distro, devel bool) []string {
	suffix := "-dev"
	if distro.IsRHEL() {
		suffix = "-devel"
	}

	var pkgs []string
	add := func(name string) {
		pkgs = append(pkgs, name)
		if devel {
			pkgs = append(pkgs, name+suffix)
		}
	}
	if !p.opts.DisablePython2 {
		// RHEL 8 ships no unversioned python package.
		if distro == recipe.DistroRHEL8 {
			add("python2")
		} else {
			add("python")
		}
	}
	if !p.opts.DisablePython3 {
		add("python3")
	}
	return pkgs
}

// Instructions implements recipe.Directive.
func (p *Python) Instructions(ctx recipe.Context) []recipe.Instruction {
	return []recipe.Instruction{
		recipe.Comment("Python"),
		recipe.Run(installPackages(ctx.Distro, p.packages(ctx.Distro, p.opts.Devel)...)...),
	}
}

// RuntimeInstructions implements recipe.RuntimeProvider.
func (p *Python) RuntimeInstructions(ctx recipe.Context, _ string) []recipe.Instruction {
	return []recipe.Instruction{
		recipe.Comment("Python"),
		recipe.Run(installPackages(ctx.Distro, p.packages(ctx.Distro, false)...)...),
	}
}
