package recipe

import (
	"encoding/json"
	"fmt"

	"github.com/opencontainers/go-digest"
)

// Manifest is the structured view of a recipe: its stages and their
// directives in emission order.
type Manifest struct {
	Recipe      string          `json:"recipe"`
	Description string          `json:"description,omitempty"`
	Stages      []StageManifest `json:"stages"`
}

// StageManifest describes one stage.
type StageManifest struct {
	Index      int                 `json:"index"`
	Name       string              `json:"name,omitempty"`
	Image      string              `json:"image,omitempty"`
	Directives []DirectiveManifest `json:"directives"`
}

// DirectiveManifest describes one directive.
type DirectiveManifest struct {
	Kind   Kind           `json:"kind"`
	Params map[string]any `json:"params,omitempty"`
}

// BuildManifest returns the manifest of a recipe.
func BuildManifest(r *Recipe) Manifest {
	m := Manifest{
		Recipe:      r.Name,
		Description: r.Description,
		Stages:      make([]StageManifest, 0, len(r.stages)),
	}

	for i, s := range r.stages {
		sm := StageManifest{
			Index:      i,
			Name:       s.Name(),
			Directives: make([]DirectiveManifest, 0, s.Len()),
		}
		if b := s.Base(); b != nil {
			sm.Image = b.Image()
		}
		for _, d := range s.directives {
			params := d.Describe()
			if len(params) == 0 {
				params = nil
			}
			sm.Directives = append(sm.Directives, DirectiveManifest{Kind: d.Kind(), Params: params})
		}
		m.Stages = append(m.Stages, sm)
	}
	return m
}

// Digest returns a content digest of the manifest. Equal recipes have
// equal digests; any parameter change yields a different one.
func (m Manifest) Digest() digest.Digest {
	// encoding/json sorts map keys, so the encoding is canonical.
	b, err := json.Marshal(m)
	if err != nil {
		b = []byte(fmt.Sprintf("%v", m))
	}
	return digest.FromBytes(b)
}
