// Package recipes holds the built-in recipes and the catalog they are
// looked up from.
package recipes

import (
	"fmt"
	"path"
	"regexp"

	"github.com/opmodel/hpcbase/internal/blocks"
	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/recipe"
)

// HPCBaseName is the catalog name of the HPC base image recipe.
const HPCBaseName = "gnu-mvapich2-hdf5"

// HPCBaseDoc is the documentation header emitted at the top of the
// HPC base image build file.
const HPCBaseDoc = `
HPC Base image

Contents:
  CUDA version 10.0
  HDF5 version 1.10.5
  GNU compilers version 8.3
  MVAPICH2 version 2.3.1
  Python 2 and 3 (upstream)
`

// DevelStage is the alias of the build stage the runtime stage imports from.
const DevelStage = "devel"

// Params are the tunable values of the HPC base image recipe.
type Params struct {
	DevelImage      string `json:"develImage"`
	RuntimeImage    string `json:"runtimeImage"`
	GNUVersion      string `json:"gnuVersion"`
	OFEDVersion     string `json:"ofedVersion"`
	MVAPICH2Version string `json:"mvapich2Version"`
	CUDA            bool   `json:"cuda"`
	HDF5Version     string `json:"hdf5Version"`
	MetisVersion    string `json:"metisVersion"`
	MetisPrefix     string `json:"metisPrefix"`
}

// DefaultParams returns the parameters the HPC base image is published with.
func DefaultParams() Params {
	return Params{
		DevelImage:      "nvidia/cuda:10.1-devel-centos7",
		RuntimeImage:    "nvidia/cuda:10.1-runtime-centos7",
		GNUVersion:      "8",
		OFEDVersion:     "4.6-1.0.1.1",
		MVAPICH2Version: "2.3.1",
		CUDA:            true,
		HDF5Version:     "1.10.5",
		MetisVersion:    "5.1.0",
		MetisPrefix:     "/usr/local/metis",
	}
}

var metisVersion = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// MetisLibrary returns the path of the static Metis library under prefix.
func MetisLibrary(prefix string) string {
	return path.Join(prefix, "libmetis.a")
}

// metisCommands builds Metis from its release tarball. Metis ships its
// own configure wrapper, so the generic source build does not apply.
func metisCommands(version, prefix string) []string {
	dir := "metis-" + version
	tarball := dir + ".tar.gz"
	return []string{
		"mkdir -p /var/tmp",
		"wget -q -nc --no-check-certificate -P /var/tmp http://glaros.dtc.umn.edu/gkhome/fetch/sw/metis/" + tarball,
		fmt.Sprintf("tar -xzf /var/tmp/%s -C /var/tmp", tarball),
		"cd /var/tmp/" + dir,
		"make config prefix=" + prefix,
		"make install",
	}
}

// HPCBase builds the two-stage HPC base image: a devel stage with the
// compilers, MPI and HDF5 built against CUDA, and a runtime stage that
// imports only what the devel stage's software needs at run time.
func HPCBase(p Params) (*recipe.Recipe, error) {
	if !metisVersion.MatchString(p.MetisVersion) {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("invalid metis version %q", p.MetisVersion),
			HPCBaseName, "metisVersion", "Use a version such as 5.1.0")
	}
	if !path.IsAbs(p.MetisPrefix) {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("metis prefix %q is not absolute", p.MetisPrefix),
			HPCBaseName, "metisPrefix", "")
	}

	devel, err := blocks.NewBaseImage(p.DevelImage, DevelStage)
	if err != nil {
		return nil, fmt.Errorf("devel image: %w", err)
	}
	python, err := blocks.NewPython(blocks.PythonOptions{})
	if err != nil {
		return nil, err
	}
	compiler, err := blocks.NewGNU(blocks.GNUOptions{Version: p.GNUVersion})
	if err != nil {
		return nil, err
	}
	ofed, err := blocks.NewMlnxOFED(blocks.MlnxOFEDOptions{Version: p.OFEDVersion})
	if err != nil {
		return nil, err
	}
	mpi, err := blocks.NewMVAPICH2(blocks.MVAPICH2Options{
		Version:   p.MVAPICH2Version,
		CUDA:      p.CUDA,
		Toolchain: compiler.Toolchain(),
	})
	if err != nil {
		return nil, err
	}
	hdf5, err := blocks.NewHDF5(blocks.HDF5Options{
		Version:   p.HDF5Version,
		MPI:       true,
		Toolchain: compiler.Toolchain(),
	})
	if err != nil {
		return nil, err
	}
	cmake, err := blocks.NewShell("yum install -y cmake")
	if err != nil {
		return nil, err
	}
	metis, err := blocks.NewShell(metisCommands(p.MetisVersion, p.MetisPrefix)...)
	if err != nil {
		return nil, err
	}
	metisEnv, err := blocks.NewEnvironment(map[string]string{"LIB_METIS": MetisLibrary(p.MetisPrefix)})
	if err != nil {
		return nil, err
	}

	stage0 := recipe.NewStage(
		blocks.NewComment(HPCBaseDoc, false),
		devel,
		python,
		compiler,
		ofed,
		mpi,
		hdf5,
		cmake,
		metis,
		metisEnv,
	)

	runtime, err := blocks.NewBaseImage(p.RuntimeImage, "")
	if err != nil {
		return nil, fmt.Errorf("runtime image: %w", err)
	}
	imported, err := stage0.Runtime(DevelStage)
	if err != nil {
		return nil, err
	}
	stage1 := recipe.NewStage(runtime, imported)

	r := recipe.New(HPCBaseName, "HPC base image with GNU compilers, MVAPICH2 and HDF5").
		AddStage(stage0, stage1)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
