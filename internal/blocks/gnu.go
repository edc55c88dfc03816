package blocks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opmodel/hpcbase/internal/recipe"
)

// GNUOptions configures the GNU compiler directive. An empty Version
// installs the distribution default compilers.
type GNUOptions struct {
	Version string `json:"version,omitempty"`
}

// GNU installs the GNU C, C++ and Fortran compilers.
type GNU struct {
	version string
}

// NewGNU returns a GNU compiler directive.
func NewGNU(opts GNUOptions) (*GNU, error) {
	if opts.Version != "" {
		if err := checkVersion(recipe.KindGNU, opts.Version, dottedVersion, "8"); err != nil {
			return nil, err
		}
	}
	return &GNU{version: opts.Version}, nil
}

// Kind implements recipe.Directive.
func (g *GNU) Kind() recipe.Kind { return recipe.KindGNU }

// Version returns the requested compiler version, empty for the default.
func (g *GNU) Version() string { return g.version }

// Toolchain returns the compilers this directive provides. Versioned
// compilers are put on the default search path by the directive, so the
// toolchain always names the plain driver binaries.
func (g *GNU) Toolchain() recipe.Toolchain {
	return defaultToolchain
}

// Describe implements recipe.Directive.
func (g *GNU) Describe() map[string]any {
	out := map[string]any{
		"toolchain": g.Toolchain().Describe(),
	}
	if g.version != "" {
		out["version"] = g.version
	}
	return out
}

func (g *GNU) major() string {
	major, _, _ := strings.Cut(g.version, ".")
	return major
}

// Instructions implements recipe.Directive.
func (g *GNU) Instructions(ctx recipe.Context) []recipe.Instruction {
	out := []recipe.Instruction{recipe.Comment("GNU compiler")}

	if g.version == "" {
		pkgs := []string{"gcc", "g++", "gfortran"}
		if ctx.Distro.IsRHEL() {
			pkgs = []string{"gcc", "gcc-c++", "gcc-gfortran"}
		}
		return append(out, recipe.Run(installPackages(ctx.Distro, pkgs...)...))
	}

	major := g.major()
	switch ctx.Distro {
	case recipe.DistroCentOS7, recipe.DistroRHEL8:
		collection := "devtoolset-" + major
		if ctx.Distro == recipe.DistroRHEL8 {
			collection = "gcc-toolset-" + major
		}

		var cmds []string
		if ctx.Distro == recipe.DistroCentOS7 {
			cmds = append(cmds, installPackages(ctx.Distro, "centos-release-scl")...)
		}
		cmds = append(cmds, installPackages(ctx.Distro,
			collection+"-gcc", collection+"-gcc-c++", collection+"-gcc-gfortran")...)

		root := fmt.Sprintf("/opt/rh/%s/root/usr", collection)
		out = append(out,
			recipe.Run(cmds...),
			recipe.Env(
				recipe.EnvVar{Name: "LD_LIBRARY_PATH", Value: root + "/lib64:$LD_LIBRARY_PATH"},
				recipe.EnvVar{Name: "PATH", Value: root + "/bin:$PATH"},
			))
	default:
		cmds := installPackages(ctx.Distro, "gcc-"+major, "g++-"+major, "gfortran-"+major)
		for _, bin := range []string{"gcc", "g++", "gfortran"} {
			cmds = append(cmds, fmt.Sprintf(
				"update-alternatives --install /usr/bin/%[1]s %[1]s $(which %[1]s-%[2]s) 30", bin, major))
		}
		out = append(out, recipe.Run(cmds...))
	}
	return out
}

// RuntimeInstructions implements recipe.RuntimeProvider.
func (g *GNU) RuntimeInstructions(ctx recipe.Context, _ string) []recipe.Instruction {
	pkgs := []string{"libgfortran", "libgomp"}
	if !ctx.Distro.IsRHEL() {
		pkgs = []string{"libgfortran" + g.fortranSoname(), "libgomp1"}
	}
	return []recipe.Instruction{
		recipe.Comment("GNU compiler runtime"),
		recipe.Run(installPackages(ctx.Distro, pkgs...)...),
	}
}

// fortranSoname returns the libgfortran major matching the compiler
// version on Debian based distributions.
func (g *GNU) fortranSoname() string {
	if major, err := strconv.Atoi(g.major()); err == nil && major >= 8 {
		return "5"
	}
	return "4"
}
