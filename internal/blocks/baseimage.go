package blocks

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/recipe"
)

var _ recipe.Base = (*BaseImage)(nil)

// BaseImage selects the image a stage starts from.
type BaseImage struct {
	image  string
	as     string
	distro recipe.Distro
}

// NewBaseImage returns a base image directive. as names the stage so that
// later stages can import from it; it may be empty.
func NewBaseImage(image, as string) (*BaseImage, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, oerrors.NewValidationError("base image must not be empty",
			recipe.KindBaseImage.String(), "image", "Use an image reference such as ubuntu:18.04")
	}
	if _, err := reference.ParseNormalizedNamed(image); err != nil {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("invalid image reference %q: %v", image, err),
			recipe.KindBaseImage.String(), "image", "Use a reference such as nvidia/cuda:10.1-devel-centos7")
	}
	if strings.ContainsAny(as, " \t\r\n") {
		return nil, oerrors.NewValidationError("stage alias must not contain whitespace",
			recipe.KindBaseImage.String(), "as", "")
	}
	return &BaseImage{
		image:  image,
		as:     as,
		distro: recipe.DistroFromImage(image),
	}, nil
}

// Kind implements recipe.Directive.
func (b *BaseImage) Kind() recipe.Kind { return recipe.KindBaseImage }

// Image implements recipe.Base.
func (b *BaseImage) Image() string { return b.image }

// StageName implements recipe.Base.
func (b *BaseImage) StageName() string { return b.as }

// Distro implements recipe.Base.
func (b *BaseImage) Distro() recipe.Distro { return b.distro }

// Describe implements recipe.Directive.
func (b *BaseImage) Describe() map[string]any {
	out := map[string]any{
		"image":  b.image,
		"distro": string(b.distro),
	}
	if b.as != "" {
		out["as"] = b.as
	}
	return out
}

// Instructions implements recipe.Directive.
func (b *BaseImage) Instructions(recipe.Context) []recipe.Instruction {
	return []recipe.Instruction{recipe.From(b.image, b.as)}
}
