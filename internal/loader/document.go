package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/opmodel/hpcbase/internal/blocks"
	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/recipe"
)

// Document is a recipe described as data.
type Document struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Stages      []StageDocument `json:"stages"`
}

// StageDocument lists the directives of one stage in order.
type StageDocument struct {
	Directives []DirectiveDocument `json:"directives"`
}

// DirectiveDocument holds exactly one directive, keyed by its kind.
type DirectiveDocument struct {
	BaseImage   *BaseImageDocument      `json:"baseimage,omitempty"`
	Comment     *CommentDocument        `json:"comment,omitempty"`
	Python      *blocks.PythonOptions   `json:"python,omitempty"`
	GNU         *GNUDocument            `json:"gnu,omitempty"`
	MlnxOFED    *blocks.MlnxOFEDOptions `json:"mlnx_ofed,omitempty"`
	MVAPICH2    *MVAPICH2Document       `json:"mvapich2,omitempty"`
	HDF5        *HDF5Document           `json:"hdf5,omitempty"`
	Shell       *ShellDocument          `json:"shell,omitempty"`
	Environment *EnvironmentDocument    `json:"environment,omitempty"`
	Runtime     *RuntimeDocument        `json:"runtime,omitempty"`
}

// BaseImageDocument starts a stage; As names it for runtime imports.
type BaseImageDocument struct {
	Image string `json:"image"`
	As    string `json:"as,omitempty"`
}

// CommentDocument is a comment, re-wrapped when Reformat is set.
type CommentDocument struct {
	Text     string `json:"text"`
	Reformat bool   `json:"reformat,omitempty"`
}

// GNUDocument declares a compiler. Name is the handle later directives
// use to reference its toolchain; it defaults to "gnu".
type GNUDocument struct {
	Version string `json:"version,omitempty"`
	Name    string `json:"name,omitempty"`
}

// MVAPICH2Document builds MVAPICH2 with the named toolchain.
type MVAPICH2Document struct {
	Version   string `json:"version,omitempty"`
	CUDA      bool   `json:"cuda,omitempty"`
	Toolchain string `json:"toolchain,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

// HDF5Document builds HDF5 with the named toolchain.
type HDF5Document struct {
	Version   string `json:"version,omitempty"`
	MPI       bool   `json:"mpi,omitempty"`
	Toolchain string `json:"toolchain,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

// ShellDocument runs commands as one chained step.
type ShellDocument struct {
	Commands []string `json:"commands"`
}

// EnvironmentDocument sets environment variables.
type EnvironmentDocument struct {
	Variables map[string]string `json:"variables"`
}

// RuntimeDocument imports the runtime artifacts of the stage named From.
type RuntimeDocument struct {
	From string `json:"from"`
}

// kinds returns the kinds set on the directive.
func (d DirectiveDocument) kinds() []recipe.Kind {
	var out []recipe.Kind
	add := func(set bool, k recipe.Kind) {
		if set {
			out = append(out, k)
		}
	}
	add(d.BaseImage != nil, recipe.KindBaseImage)
	add(d.Comment != nil, recipe.KindComment)
	add(d.Python != nil, recipe.KindPython)
	add(d.GNU != nil, recipe.KindGNU)
	add(d.MlnxOFED != nil, recipe.KindMlnxOFED)
	add(d.MVAPICH2 != nil, recipe.KindMVAPICH2)
	add(d.HDF5 != nil, recipe.KindHDF5)
	add(d.Shell != nil, recipe.KindShell)
	add(d.Environment != nil, recipe.KindEnvironment)
	add(d.Runtime != nil, recipe.KindRuntime)
	return out
}

// LoadRecipe reads a recipe document and builds the recipe it describes.
func LoadRecipe(path string) (*recipe.Recipe, error) {
	v, err := NewValuesLoader(nil).LoadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := decodeAs(v, defDocument, path, "", &doc); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return Build(doc, path)
}

// builder tracks the names a document can reference while its
// directives are constructed in order.
type builder struct {
	source     string
	toolchains map[string]recipe.Toolchain
	stages     map[string]*recipe.Stage
	declared   map[string]int
}

// Build constructs the recipe a document describes. source names the
// document in error locations.
func Build(doc Document, source string) (*recipe.Recipe, error) {
	b := &builder{
		source:     source,
		toolchains: make(map[string]recipe.Toolchain),
		stages:     make(map[string]*recipe.Stage),
		declared:   make(map[string]int),
	}

	if len(doc.Stages) == 0 {
		return nil, oerrors.NewValidationError("recipe document has no stages", source, "stages", "")
	}

	// Stage aliases are collected up front so that a reference to a later
	// stage is reported as a forward reference rather than an unknown name.
	for i, s := range doc.Stages {
		for _, d := range s.Directives {
			if d.BaseImage != nil && d.BaseImage.As != "" {
				if _, dup := b.declared[d.BaseImage.As]; !dup {
					b.declared[d.BaseImage.As] = i
				}
			}
		}
	}

	r := recipe.New(doc.Name, doc.Description)
	for i, s := range doc.Stages {
		stage := recipe.NewStage()
		for j, d := range s.Directives {
			directive, err := b.directive(d, i, j)
			if err != nil {
				return nil, err
			}
			stage.Add(directive)
		}
		if name := stage.Name(); name != "" {
			b.stages[name] = stage
		}
		r.AddStage(stage)
	}

	if err := r.Validate(); err != nil {
		return nil, locate(err, source)
	}
	return r, nil
}

func (b *builder) location(stage, index int) string {
	return fmt.Sprintf("%s: stages[%d].directives[%d]", b.source, stage, index)
}

func (b *builder) directive(d DirectiveDocument, stage, index int) (recipe.Directive, error) {
	loc := b.location(stage, index)

	kinds := d.kinds()
	switch len(kinds) {
	case 0:
		return nil, oerrors.NewValidationError("directive sets no kind", loc, "",
			"Set exactly one of baseimage, comment, python, gnu, mlnx_ofed, mvapich2, hdf5, shell, environment, runtime")
	case 1:
	default:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("directive sets several kinds: %s", strings.Join(names, ", ")), loc, "",
			"Split the directive into one entry per kind")
	}

	var (
		directive recipe.Directive
		err       error
	)
	switch {
	case d.BaseImage != nil:
		directive, err = blocks.NewBaseImage(d.BaseImage.Image, d.BaseImage.As)
	case d.Comment != nil:
		directive = blocks.NewComment(d.Comment.Text, d.Comment.Reformat)
	case d.Python != nil:
		directive, err = blocks.NewPython(*d.Python)
	case d.GNU != nil:
		directive, err = b.gnu(*d.GNU, loc)
	case d.MlnxOFED != nil:
		directive, err = blocks.NewMlnxOFED(*d.MlnxOFED)
	case d.MVAPICH2 != nil:
		var tc recipe.Toolchain
		if tc, err = b.toolchain(d.MVAPICH2.Toolchain, loc); err == nil {
			directive, err = blocks.NewMVAPICH2(blocks.MVAPICH2Options{
				Version:   d.MVAPICH2.Version,
				CUDA:      d.MVAPICH2.CUDA,
				Toolchain: tc,
				Prefix:    d.MVAPICH2.Prefix,
			})
		}
	case d.HDF5 != nil:
		var tc recipe.Toolchain
		if tc, err = b.toolchain(d.HDF5.Toolchain, loc); err == nil {
			directive, err = blocks.NewHDF5(blocks.HDF5Options{
				Version:   d.HDF5.Version,
				MPI:       d.HDF5.MPI,
				Toolchain: tc,
				Prefix:    d.HDF5.Prefix,
			})
		}
	case d.Shell != nil:
		directive, err = blocks.NewShell(d.Shell.Commands...)
	case d.Environment != nil:
		directive, err = blocks.NewEnvironment(d.Environment.Variables)
	case d.Runtime != nil:
		directive, err = b.runtime(*d.Runtime, stage, loc)
	}
	if err != nil {
		return nil, locate(err, loc)
	}
	return directive, nil
}

// locate points a directive construction error at the document position
// it came from.
func locate(err error, loc string) error {
	var detail *oerrors.DetailError
	if !errors.As(err, &detail) {
		return fmt.Errorf("%s: %w", loc, err)
	}
	if detail.Location == loc {
		return err
	}

	out := *detail
	out.Context = make(map[string]string, len(detail.Context)+1)
	for k, v := range detail.Context {
		out.Context[k] = v
	}
	if detail.Location != "" {
		out.Context["directive"] = detail.Location
	}
	out.Location = loc
	return &out
}

func (b *builder) gnu(doc GNUDocument, loc string) (recipe.Directive, error) {
	g, err := blocks.NewGNU(blocks.GNUOptions{Version: doc.Version})
	if err != nil {
		return nil, err
	}
	name := doc.Name
	if name == "" {
		name = "gnu"
	}
	if _, dup := b.toolchains[name]; dup {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("toolchain %q already declared", name), loc, "name",
			"Give each compiler a distinct name")
	}
	b.toolchains[name] = g.Toolchain()
	return g, nil
}

// toolchain resolves a toolchain reference. An empty reference selects
// the default compilers.
func (b *builder) toolchain(name, loc string) (recipe.Toolchain, error) {
	if name == "" {
		return recipe.Toolchain{}, nil
	}
	tc, ok := b.toolchains[name]
	if !ok {
		return recipe.Toolchain{}, oerrors.NewValidationError(
			fmt.Sprintf("toolchain %q is not declared before this directive", name), loc, "toolchain",
			"Declare the gnu directive providing the toolchain earlier in the recipe")
	}
	return tc, nil
}

func (b *builder) runtime(doc RuntimeDocument, stage int, loc string) (recipe.Directive, error) {
	src, ok := b.stages[doc.From]
	if !ok {
		if at, declared := b.declared[doc.From]; declared && at >= stage {
			return nil, oerrors.NewValidationError(
				fmt.Sprintf("runtime import references stage %q declared at stage %d", doc.From, at), loc, "from",
				"Import runtime artifacts only from earlier stages")
		}
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("unknown stage %q", doc.From), loc, "from",
			"Name the source stage with the 'as' field of its base image")
	}
	return src.Runtime(doc.From)
}
