package loader

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/recipe"
	"github.com/opmodel/hpcbase/internal/recipes"
	"github.com/opmodel/hpcbase/internal/testutil"
)

func TestLoadRecipe_MatchesBuiltin(t *testing.T) {
	loaded, err := LoadRecipe(filepath.Join("testdata", "hpcbase.yaml"))
	require.NoError(t, err)

	builtin, err := recipes.HPCBase(recipes.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, recipe.BuildManifest(builtin), recipe.BuildManifest(loaded))
}

func TestLoadRecipe_NameFromFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "minimal.json", `{
  "stages": [{"directives": [{"baseimage": {"image": "ubuntu:18.04"}}]}]
}`)

	r, err := LoadRecipe(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", r.Name)
}

func TestLoadRecipe_CUE(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "recipe.cue", `
name: "cue-recipe"
stages: [{
	directives: [
		{baseimage: {image: "centos:7", as: "build"}},
		{gnu: {}},
		{hdf5: {toolchain: "gnu"}},
	]
}, {
	directives: [
		{baseimage: {image: "centos:7"}},
		{runtime: {from: "build"}},
	]
}]
`)

	r, err := LoadRecipe(path)
	require.NoError(t, err)
	require.Len(t, r.Stages(), 2)
	assert.Equal(t, "build", r.Stages()[0].Name())
}

func TestLoadRecipe_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel error
		location string
	}{
		{
			name:     "toolchain referenced before its compiler",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7"}}, {"mvapich2": {"toolchain": "gnu"}}, {"gnu": {}}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[1]",
		},
		{
			name:     "unknown toolchain",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7"}}, {"gnu": {}}, {"hdf5": {"toolchain": "intel"}}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[2]",
		},
		{
			name: "runtime import from later stage",
			content: `{"stages": [
				{"directives": [{"baseimage": {"image": "centos:7"}}, {"runtime": {"from": "devel"}}]},
				{"directives": [{"baseimage": {"image": "centos:7", "as": "devel"}}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[1]",
		},
		{
			name:     "runtime import from unknown stage",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7"}}, {"runtime": {"from": "nowhere"}}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[1]",
		},
		{
			name:     "directive without kind",
			content:  `{"stages": [{"directives": [{}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[0]",
		},
		{
			name:     "directive with two kinds",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7"}, "python": {}}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[0]",
		},
		{
			name:     "bad version",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7"}}, {"mlnx_ofed": {"version": "latest"}}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[1]",
		},
		{
			name:     "multi-line shell command",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7"}}, {"shell": {"commands": ["echo a\nRUN rm -rf /"]}}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[1]",
		},
		{
			name:     "multi-line environment value",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7"}}, {"environment": {"variables": {"A": "x\ny"}}}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[1]",
		},
		{
			name:     "multi-line stage alias",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7", "as": "devel\nRUN id"}}]}]}`,
			sentinel: oerrors.ErrValidation,
			location: "stages[0].directives[0]",
		},
		{
			name:     "mistyped field",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7"}}, {"mvapich2": {"cuda": "yes"}}]}]}`,
			sentinel: oerrors.ErrValidation,
		},
		{
			name:     "unknown kind",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7"}}, {"openmpi": {}}]}]}`,
			sentinel: oerrors.ErrValidation,
		},
		{
			name:     "unknown field",
			content:  `{"stages": [{"directives": [{"baseimage": {"image": "centos:7", "tag": "x"}}]}]}`,
			sentinel: oerrors.ErrValidation,
		},
		{
			name:     "no stages",
			content:  `{"name": "empty"}`,
			sentinel: oerrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, t.TempDir(), "recipe.json", tt.content)

			_, err := LoadRecipe(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)

			if tt.location != "" {
				var detail *oerrors.DetailError
				require.True(t, errors.As(err, &detail))
				assert.Equal(t, path+": "+tt.location, detail.Location)
			}
		})
	}
}

func TestLoadRecipe_MissingFile(t *testing.T) {
	_, err := LoadRecipe(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "recipe.toml", "x = 1")
	_, err := NewValuesLoader(nil).LoadFile(path)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestDecodeParams(t *testing.T) {
	l := NewValuesLoader(nil)

	t.Run("no files keeps defaults", func(t *testing.T) {
		v, err := l.LoadValues()
		require.NoError(t, err)
		p, err := DecodeParams(v, recipes.DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, recipes.DefaultParams(), p)
	})

	t.Run("files unify over defaults", func(t *testing.T) {
		v, err := l.LoadValues(
			filepath.Join("testdata", "overrides.cue"),
			filepath.Join("testdata", "images.json"),
		)
		require.NoError(t, err)

		p, err := DecodeParams(v, recipes.DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, "/opt/metis", p.MetisPrefix)
		assert.False(t, p.CUDA)
		assert.Equal(t, "nvidia/cuda:10.2-devel-centos7", p.DevelImage)
		assert.Equal(t, "2.3.1", p.MVAPICH2Version)
	})

	t.Run("yaml", func(t *testing.T) {
		path := testutil.WriteFile(t, t.TempDir(), "values.yaml", "hdf5Version: \"1.12.0\"\n")
		v, err := l.LoadValues(path)
		require.NoError(t, err)
		p, err := DecodeParams(v, recipes.DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, "1.12.0", p.HDF5Version)
	})

	t.Run("conflicting files", func(t *testing.T) {
		dir := t.TempDir()
		a := testutil.WriteFile(t, dir, "a.yaml", "gnuVersion: \"8\"\n")
		b := testutil.WriteFile(t, dir, "b.yaml", "gnuVersion: \"9\"\n")
		_, err := l.LoadValues(a, b)
		assert.True(t, errors.Is(err, oerrors.ErrValidation))
	})

	t.Run("unknown key", func(t *testing.T) {
		path := testutil.WriteFile(t, t.TempDir(), "values.yaml", "openmpi: true\n")
		v, err := l.LoadValues(path)
		require.NoError(t, err)
		_, err = DecodeParams(v, recipes.DefaultParams())
		assert.True(t, errors.Is(err, oerrors.ErrValidation))
	})
}

func TestDecodeParams_Types(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "values.yaml", "cuda: \"yes\"\n")
	v, err := NewValuesLoader(nil).LoadValues(path)
	require.NoError(t, err)

	_, err = DecodeParams(v, recipes.DefaultParams())
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestParamNames(t *testing.T) {
	data, err := json.Marshal(recipes.DefaultParams())
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	var want []string
	for k := range fields {
		want = append(want, k)
	}
	sort.Strings(want)

	assert.Equal(t, want, paramNames(cuecontext.New()))
}

func TestPathLocation(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"#Document", "stages", "0", "directives", "1", "shell"}, "stages[0].directives[1].shell"},
		{[]string{"cuda"}, "cuda"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pathLocation(tt.path))
	}
}

func TestNormalizeYAML(t *testing.T) {
	in := map[any]any{1: []any{map[any]any{"a": "b"}}}
	assert.Equal(t, map[string]any{"1": []any{map[string]any{"a": "b"}}}, normalizeYAML(in))
}
