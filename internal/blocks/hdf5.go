package blocks

import (
	"fmt"
	"strings"

	"github.com/opmodel/hpcbase/internal/recipe"
)

const (
	// DefaultHDF5Version is built when no version is requested.
	DefaultHDF5Version = "1.10.5"

	defaultHDF5Prefix = "/usr/local/hdf5"
)

// HDF5Options configures the HDF5 directive.
type HDF5Options struct {
	Version   string           `json:"version,omitempty"`
	MPI       bool             `json:"mpi,omitempty"`
	Toolchain recipe.Toolchain `json:"toolchain,omitempty"`
	Prefix    string           `json:"prefix,omitempty"`
}

// HDF5 builds the HDF5 library from source, optionally with parallel I/O.
type HDF5 struct {
	opts HDF5Options
}

// NewHDF5 returns an HDF5 directive.
func NewHDF5(opts HDF5Options) (*HDF5, error) {
	if opts.Version == "" {
		opts.Version = DefaultHDF5Version
	}
	if err := checkVersion(recipe.KindHDF5, opts.Version, dottedVersion, DefaultHDF5Version); err != nil {
		return nil, err
	}
	if strings.Count(opts.Version, ".") < 1 {
		return nil, validationError(recipe.KindHDF5,
			fmt.Sprintf("HDF5 version %q needs at least a major and minor component", opts.Version),
			"version", "Use a version such as "+DefaultHDF5Version)
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultHDF5Prefix
	}
	if err := checkPrefix(recipe.KindHDF5, opts.Prefix); err != nil {
		return nil, err
	}
	if opts.Toolchain.IsZero() {
		opts.Toolchain = defaultToolchain
	}
	return &HDF5{opts: opts}, nil
}

// Kind implements recipe.Directive.
func (h *HDF5) Kind() recipe.Kind { return recipe.KindHDF5 }

// Describe implements recipe.Directive.
func (h *HDF5) Describe() map[string]any {
	return map[string]any{
		"version":   h.opts.Version,
		"mpi":       h.opts.MPI,
		"prefix":    h.opts.Prefix,
		"toolchain": h.opts.Toolchain.Describe(),
	}
}

func (h *HDF5) url() string {
	parts := strings.SplitN(h.opts.Version, ".", 3)
	series := parts[0] + "." + parts[1]
	return fmt.Sprintf("http://www.hdfgroup.org/ftp/HDF5/releases/hdf5-%[1]s/hdf5-%[2]s/src/hdf5-%[2]s.tar.bz2",
		series, h.opts.Version)
}

func (h *HDF5) environment() []recipe.EnvVar {
	p := h.opts.Prefix
	return []recipe.EnvVar{
		{Name: "CPATH", Value: p + "/include:$CPATH"},
		{Name: "HDF5_DIR", Value: p},
		{Name: "LD_LIBRARY_PATH", Value: p + "/lib:$LD_LIBRARY_PATH"},
		{Name: "LIBRARY_PATH", Value: p + "/lib:$LIBRARY_PATH"},
		{Name: "PATH", Value: p + "/bin:$PATH"},
	}
}

// Instructions implements recipe.Directive.
func (h *HDF5) Instructions(ctx recipe.Context) []recipe.Instruction {
	build := sourceBuild{
		URL:       h.url(),
		Directory: "hdf5-" + h.opts.Version,
		Prefix:    h.opts.Prefix,
		Toolchain: h.opts.Toolchain,
	}
	if h.opts.MPI {
		build.Toolchain = build.Toolchain.Merge(recipe.Toolchain{
			CC:  "mpicc",
			CXX: "mpicxx",
			F77: "mpif77",
			F90: "mpif90",
			FC:  "mpifort",
		})
		build.ConfigureOpts = []string{"--enable-fortran", "--enable-parallel"}
	} else {
		build.ConfigureOpts = []string{"--enable-cxx", "--enable-fortran"}
	}

	zlib := "zlib1g-dev"
	if ctx.Distro.IsRHEL() {
		zlib = "zlib-devel"
	}
	cmds := installPackages(ctx.Distro, "bzip2", "file", "make", "wget", zlib)
	cmds = append(cmds, build.commands()...)

	return []recipe.Instruction{
		recipe.Comment("HDF5 version " + h.opts.Version),
		recipe.Run(cmds...),
		recipe.Env(h.environment()...),
	}
}

// RuntimeInstructions implements recipe.RuntimeProvider.
func (h *HDF5) RuntimeInstructions(ctx recipe.Context, from string) []recipe.Instruction {
	zlib := "zlib1g"
	if ctx.Distro.IsRHEL() {
		zlib = "zlib"
	}
	return []recipe.Instruction{
		recipe.Comment("HDF5"),
		recipe.Run(installPackages(ctx.Distro, zlib)...),
		recipe.CopyFrom(from, h.opts.Prefix, h.opts.Prefix),
		recipe.Env(h.environment()...),
	}
}
