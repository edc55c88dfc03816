package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/recipe"
)

// DefaultSingularityVersion is the oldest Singularity release with
// multi-stage builds.
const DefaultSingularityVersion = "3.2"

// Options controls rendering.
type Options struct {
	// Format is the build file syntax. Empty selects Docker.
	Format Format

	// SingularityVersion is the target Singularity release.
	// Empty selects DefaultSingularityVersion.
	SingularityVersion string
}

// Render validates the recipe and serializes it. The output depends only
// on the recipe and the options.
func Render(r *recipe.Recipe, opts Options) ([]byte, error) {
	var b strings.Builder
	if err := Write(&b, r, opts); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// Write validates the recipe and writes its build file to w.
func Write(w io.Writer, r *recipe.Recipe, opts Options) error {
	if r == nil {
		return oerrors.NewValidationError("no recipe to render", "", "", "")
	}
	if err := r.Validate(); err != nil {
		return err
	}

	format := opts.Format
	if format == "" {
		format = FormatDocker
	}
	if !format.IsValid() {
		return oerrors.NewValidationError(
			fmt.Sprintf("unknown format %q", format), "", "format",
			"Valid formats: "+strings.Join(ValidFormats(), ", "))
	}

	var text string
	switch format {
	case FormatDocker:
		text = renderDocker(r)
	case FormatSingularity:
		version := opts.SingularityVersion
		if version == "" {
			version = DefaultSingularityVersion
		}
		if len(r.Stages()) > 1 {
			ok, err := atLeast(version, DefaultSingularityVersion)
			if err != nil {
				return err
			}
			if !ok {
				return oerrors.NewValidationError(
					fmt.Sprintf("singularity %s does not support multi-stage builds", version),
					r.Name, "singularity.version",
					"Target Singularity "+DefaultSingularityVersion+" or newer")
			}
		}
		text = renderSingularity(r)
	}

	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("writing %s output: %w", format, err)
	}
	return nil
}

// group is the instructions of one directive. Groups are separated by
// a blank line in the output.
type group []recipe.Instruction

func stageGroups(s *recipe.Stage) []group {
	ctx := s.Context()
	var out []group
	for _, d := range s.Directives() {
		if instrs := d.Instructions(ctx); len(instrs) > 0 {
			out = append(out, instrs)
		}
	}
	return out
}

// commentLines prefixes every line of text with "#".
func commentLines(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = "#"
			continue
		}
		out[i] = "# " + line
	}
	return out
}

// atLeast reports whether the dotted version v is at least min.
func atLeast(v, min string) (bool, error) {
	parse := func(s string) ([]int, error) {
		parts := strings.Split(s, ".")
		out := make([]int, len(parts))
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, oerrors.NewValidationError(
					fmt.Sprintf("invalid singularity version %q", s), "", "singularity.version",
					"Use a version such as "+DefaultSingularityVersion)
			}
			out[i] = n
		}
		return out, nil
	}

	have, err := parse(v)
	if err != nil {
		return false, err
	}
	want, err := parse(min)
	if err != nil {
		return false, err
	}
	for i := 0; i < len(want); i++ {
		h := 0
		if i < len(have) {
			h = have[i]
		}
		if h != want[i] {
			return h > want[i], nil
		}
	}
	return true, nil
}
