package blocks

import (
	"fmt"
	"path"
	"strings"

	"github.com/opmodel/hpcbase/internal/recipe"
)

// DefaultOFEDVersion is installed when no version is requested.
const DefaultOFEDVersion = "4.6-1.0.1.1"

// MlnxOFEDOptions configures the Mellanox OFED directive.
type MlnxOFEDOptions struct {
	Version string `json:"version,omitempty"`
}

// MlnxOFED installs the Mellanox OpenFabrics user space libraries from the
// vendor bundle.
type MlnxOFED struct {
	version string
}

// NewMlnxOFED returns a Mellanox OFED directive.
func NewMlnxOFED(opts MlnxOFEDOptions) (*MlnxOFED, error) {
	version := opts.Version
	if version == "" {
		version = DefaultOFEDVersion
	}
	if err := checkVersion(recipe.KindMlnxOFED, version, ofedVersion, DefaultOFEDVersion); err != nil {
		return nil, err
	}
	return &MlnxOFED{version: version}, nil
}

// Kind implements recipe.Directive.
func (m *MlnxOFED) Kind() recipe.Kind { return recipe.KindMlnxOFED }

// Describe implements recipe.Directive.
func (m *MlnxOFED) Describe() map[string]any {
	return map[string]any{"version": m.version}
}

var ofedLabels = map[recipe.Distro]string{
	recipe.DistroCentOS7:  "rhel7.2",
	recipe.DistroRHEL8:    "rhel8.0",
	recipe.DistroUbuntu18: "ubuntu18.04",
	recipe.DistroUbuntu20: "ubuntu20.04",
}

func (m *MlnxOFED) bundle(distro recipe.Distro) string {
	label, ok := ofedLabels[distro]
	if !ok {
		label = ofedLabels[recipe.DistroUbuntu18]
	}
	return fmt.Sprintf("MLNX_OFED_LINUX-%s-%s-x86_64", m.version, label)
}

func (m *MlnxOFED) url(distro recipe.Distro) string {
	return fmt.Sprintf("http://content.mellanox.com/ofed/MLNX_OFED-%s/%s.tgz", m.version, m.bundle(distro))
}

func ofedPackages(distro recipe.Distro, devel bool) []string {
	if distro.IsRHEL() {
		pkgs := []string{"libibumad", "libibverbs", "libibverbs-utils", "libmlx4", "libmlx5", "librdmacm"}
		if devel {
			pkgs = append(pkgs, "libibumad-devel", "libibverbs-devel", "libmlx4-devel", "libmlx5-devel", "librdmacm-devel")
		}
		return pkgs
	}
	pkgs := []string{"ibverbs-utils", "libibumad", "libibverbs1", "libmlx4-1", "libmlx5-1", "librdmacm1"}
	if devel {
		pkgs = append(pkgs, "libibumad-devel", "libibverbs-dev", "libmlx4-dev", "libmlx5-dev", "librdmacm-dev")
	}
	return pkgs
}

func ofedDependencies(distro recipe.Distro) []string {
	if distro.IsRHEL() {
		return []string{"findutils", "libnl", "libnl3", "numactl-libs", "wget"}
	}
	return []string{"libnl-3-200", "libnl-route-3-200", "libnuma1", "wget"}
}

func (m *MlnxOFED) commands(distro recipe.Distro, devel bool) []string {
	bundle := m.bundle(distro)
	tarball := bundle + ".tgz"
	dir := path.Join(workDir, bundle)

	pkgs := ofedPackages(distro, devel)
	pattern := fmt.Sprintf(`'.*/(%s)-[0-9].*rpm'`, strings.Join(pkgs, "|"))
	install := "-exec rpm --install --nodeps {} +"
	if !distro.IsRHEL() {
		pattern = fmt.Sprintf(`'.*/(%s)_[0-9].*deb'`, strings.Join(pkgs, "|"))
		install = "-exec dpkg --install {} +"
	}

	cmds := installPackages(distro, ofedDependencies(distro)...)
	cmds = append(cmds, download(m.url(distro))...)
	cmds = append(cmds,
		"mkdir -p /etc/libibverbs.d",
		extract(tarball),
		fmt.Sprintf("find %s -regextype posix-extended -type f -regex %s -not -path '*UPSTREAM*' %s", dir, pattern, install),
		fmt.Sprintf("rm -rf %s %s", dir, path.Join(workDir, tarball)),
	)
	return cmds
}

// Instructions implements recipe.Directive.
func (m *MlnxOFED) Instructions(ctx recipe.Context) []recipe.Instruction {
	return []recipe.Instruction{
		recipe.Comment("Mellanox OFED version " + m.version),
		recipe.Run(m.commands(ctx.Distro, true)...),
	}
}

// RuntimeInstructions implements recipe.RuntimeProvider.
func (m *MlnxOFED) RuntimeInstructions(ctx recipe.Context, _ string) []recipe.Instruction {
	return []recipe.Instruction{
		recipe.Comment("Mellanox OFED version " + m.version),
		recipe.Run(m.commands(ctx.Distro, false)...),
	}
}
