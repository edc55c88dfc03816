package recipes

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/hpcbase/internal/blocks"
	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/recipe"
)

func buildDefault(t *testing.T) *recipe.Recipe {
	t.Helper()
	r, err := HPCBase(DefaultParams())
	require.NoError(t, err)
	return r
}

func TestHPCBase_StageZeroOrder(t *testing.T) {
	stages := buildDefault(t).Stages()
	require.Len(t, stages, 2)

	var kinds []recipe.Kind
	for _, d := range stages[0].Directives() {
		kinds = append(kinds, d.Kind())
	}
	assert.Equal(t, []recipe.Kind{
		recipe.KindComment,
		recipe.KindBaseImage,
		recipe.KindPython,
		recipe.KindGNU,
		recipe.KindMlnxOFED,
		recipe.KindMVAPICH2,
		recipe.KindHDF5,
		recipe.KindShell,
		recipe.KindShell,
		recipe.KindEnvironment,
	}, kinds)
}

func TestHPCBase_FirstAndLastDirective(t *testing.T) {
	ds := buildDefault(t).Stages()[0].Directives()

	first, ok := ds[0].(*blocks.Comment)
	require.True(t, ok)
	assert.Equal(t, HPCBaseDoc, first.Text())
	assert.Equal(t, false, first.Describe()["reformat"])

	last, ok := ds[len(ds)-1].(*blocks.Environment)
	require.True(t, ok)
	assert.Equal(t, []recipe.EnvVar{{Name: "LIB_METIS", Value: "/usr/local/metis/libmetis.a"}}, last.Variables())
}

func TestHPCBase_Images(t *testing.T) {
	stages := buildDefault(t).Stages()

	devel := stages[0].Base()
	require.NotNil(t, devel)
	assert.Equal(t, "nvidia/cuda:10.1-devel-centos7", devel.Image())
	assert.Equal(t, "devel", devel.StageName())

	runtime := stages[1].Base()
	require.NotNil(t, runtime)
	assert.Equal(t, "nvidia/cuda:10.1-runtime-centos7", runtime.Image())
}

func TestHPCBase_MetisCommands(t *testing.T) {
	ds := buildDefault(t).Stages()[0].Directives()

	cmake, ok := ds[7].(*blocks.Shell)
	require.True(t, ok)
	assert.Equal(t, []string{"yum install -y cmake"}, cmake.Commands())

	metis, ok := ds[8].(*blocks.Shell)
	require.True(t, ok)
	assert.Equal(t, []string{
		"mkdir -p /var/tmp",
		"wget -q -nc --no-check-certificate -P /var/tmp http://glaros.dtc.umn.edu/gkhome/fetch/sw/metis/metis-5.1.0.tar.gz",
		"tar -xzf /var/tmp/metis-5.1.0.tar.gz -C /var/tmp",
		"cd /var/tmp/metis-5.1.0",
		"make config prefix=/usr/local/metis",
		"make install",
	}, metis.Commands())
}

func TestHPCBase_RuntimeStage(t *testing.T) {
	ds := buildDefault(t).Stages()[1].Directives()
	require.Len(t, ds, 2)
	assert.Equal(t, recipe.KindBaseImage, ds[0].Kind())

	imp, ok := ds[1].(*recipe.RuntimeImport)
	require.True(t, ok)
	assert.Equal(t, DevelStage, imp.From())
	assert.Equal(t,
		[]string{"python", "gnu", "mlnx_ofed", "mvapich2", "hdf5"},
		imp.Describe()["directives"])
}

func TestHPCBase_ToolchainSharedByDependents(t *testing.T) {
	ds := buildDefault(t).Stages()[0].Directives()
	compiler := ds[3].(*blocks.GNU)

	want := compiler.Toolchain().Describe()
	assert.Equal(t, want, ds[5].Describe()["toolchain"])
	assert.Equal(t, want, ds[6].Describe()["toolchain"])
	assert.Equal(t, true, ds[5].Describe()["cuda"])
	assert.Equal(t, true, ds[6].Describe()["mpi"])
}

func TestHPCBase_Deterministic(t *testing.T) {
	a := recipe.BuildManifest(buildDefault(t))
	b := recipe.BuildManifest(buildDefault(t))
	assert.Equal(t, a, b)
}

func TestHPCBase_Overrides(t *testing.T) {
	p := DefaultParams()
	p.MetisPrefix = "/opt/metis"
	p.CUDA = false

	r, err := HPCBase(p)
	require.NoError(t, err)
	ds := r.Stages()[0].Directives()

	env := ds[len(ds)-1].(*blocks.Environment)
	assert.Equal(t, "/opt/metis/libmetis.a", env.Variables()[0].Value)
	assert.Contains(t, strings.Join(ds[8].(*blocks.Shell).Commands(), "\n"), "make config prefix=/opt/metis")
	assert.Equal(t, false, ds[5].Describe()["cuda"])
}

func TestHPCBase_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"bad gnu version", func(p *Params) { p.GNUVersion = "eight" }},
		{"bad ofed version", func(p *Params) { p.OFEDVersion = "4.6" }},
		{"bad mvapich2 version", func(p *Params) { p.MVAPICH2Version = "2.3.1rc" }},
		{"bad hdf5 version", func(p *Params) { p.HDF5Version = "x" }},
		{"bad metis version", func(p *Params) { p.MetisVersion = "" }},
		{"relative metis prefix", func(p *Params) { p.MetisPrefix = "metis" }},
		{"empty devel image", func(p *Params) { p.DevelImage = "" }},
		{"empty runtime image", func(p *Params) { p.RuntimeImage = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			_, err := HPCBase(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrValidation))
		})
	}
}

func TestCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{HPCBaseName}, c.Names())

	e, err := c.Get(HPCBaseName)
	require.NoError(t, err)
	r, err := e.Build(DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, HPCBaseName, r.Name)

	_, err = c.Get("missing")
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))

	extra := NewCatalog(Entry{Name: "b"}, Entry{Name: "a"})
	list := extra.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
}
