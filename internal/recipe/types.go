// Package recipe provides the container recipe data model: stages holding
// ordered directives, the primitive instructions directives render into,
// and the compiler toolchain threaded between directives.
package recipe

import "strings"

// Kind identifies the variant of a directive.
type Kind string

// Directive kinds.
const (
	KindBaseImage   Kind = "baseimage"
	KindComment     Kind = "comment"
	KindPython      Kind = "python"
	KindGNU         Kind = "gnu"
	KindMlnxOFED    Kind = "mlnx_ofed"
	KindMVAPICH2    Kind = "mvapich2"
	KindHDF5        Kind = "hdf5"
	KindShell       Kind = "shell"
	KindEnvironment Kind = "environment"
	KindRuntime     Kind = "runtime"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Directive is one declarative build action.
// Implementations are immutable once constructed.
type Directive interface {
	// Kind reports the directive variant.
	Kind() Kind

	// Describe returns the directive parameters for inspection.
	Describe() map[string]any

	// Instructions renders the directive for the given stage context.
	Instructions(ctx Context) []Instruction
}

// RuntimeProvider is implemented by directives that contribute artifacts
// to a runtime stage built from the stage they belong to.
type RuntimeProvider interface {
	// RuntimeInstructions renders the runtime projection, copying
	// artifacts from the stage named from.
	RuntimeInstructions(ctx Context, from string) []Instruction
}

// Base is implemented by the directive that starts a stage.
type Base interface {
	Directive

	// Image returns the container image reference.
	Image() string

	// StageName returns the stage alias, empty for an anonymous stage.
	StageName() string

	// Distro returns the distribution detected from the image.
	Distro() Distro
}

// Context carries per-stage render state handed to directives.
type Context struct {
	// Distro is the distribution of the stage base image.
	Distro Distro

	// Stage is the alias of the stage being rendered.
	Stage string
}

// Distro identifies the Linux distribution of a base image.
type Distro string

// Supported distributions.
const (
	DistroCentOS7  Distro = "centos7"
	DistroRHEL8    Distro = "rhel8"
	DistroUbuntu18 Distro = "ubuntu18"
	DistroUbuntu20 Distro = "ubuntu20"
)

// IsRHEL reports whether the distribution uses RPM packages.
func (d Distro) IsRHEL() bool {
	return d == DistroCentOS7 || d == DistroRHEL8
}

// DistroFromImage infers the distribution from an image reference.
// Images that carry no recognizable hint default to Ubuntu 18.04.
func DistroFromImage(image string) Distro {
	ref := strings.ToLower(image)
	switch {
	case strings.Contains(ref, "centos7"), strings.Contains(ref, "centos:7"):
		return DistroCentOS7
	case strings.Contains(ref, "centos8"), strings.Contains(ref, "centos:8"),
		strings.Contains(ref, "rockylinux"), strings.Contains(ref, "ubi8"),
		strings.Contains(ref, "rhel8"):
		return DistroRHEL8
	case strings.Contains(ref, "ubuntu20.04"), strings.Contains(ref, "ubuntu:20.04"):
		return DistroUbuntu20
	default:
		return DistroUbuntu18
	}
}
