// Package blocks provides the directives a recipe is assembled from:
// base images, comments, package and source installs of HPC software,
// raw shell steps and environment assignments.
package blocks

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/recipe"
)

// workDir is the scratch directory used by downloads and source builds.
const workDir = "/var/tmp"

var (
	dottedVersion = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)
	ofedVersion   = regexp.MustCompile(`^[0-9]+\.[0-9]+-[0-9]+(\.[0-9]+)+$`)
)

func checkVersion(block recipe.Kind, version string, pattern *regexp.Regexp, example string) error {
	if pattern.MatchString(version) {
		return nil
	}
	return oerrors.NewValidationError(
		fmt.Sprintf("invalid %s version %q", block, version),
		block.String(), "version",
		"Use a version such as "+example)
}

// installPackages returns the commands installing pkgs with the package
// manager of the distribution.
func installPackages(distro recipe.Distro, pkgs ...string) []string {
	if len(pkgs) == 0 {
		return nil
	}

	sorted := make([]string, len(pkgs))
	copy(sorted, pkgs)
	sort.Strings(sorted)

	if distro.IsRHEL() {
		return []string{
			"yum install -y " + strings.Join(sorted, " "),
			"rm -rf /var/cache/yum/*",
		}
	}
	return []string{
		"apt-get update -y",
		"DEBIAN_FRONTEND=noninteractive apt-get install -y --no-install-recommends " + strings.Join(sorted, " "),
		"rm -rf /var/lib/apt/lists/*",
	}
}

// download returns the commands fetching url into the scratch directory.
// No checksum is verified and a failed download fails the build step.
func download(url string) []string {
	return []string{
		"mkdir -p " + workDir,
		fmt.Sprintf("wget -q -nc --no-check-certificate -P %s %s", workDir, url),
	}
}

// extract returns the command unpacking an archive into the scratch directory.
func extract(tarball string) string {
	flag := ""
	switch {
	case strings.HasSuffix(tarball, ".tar.gz"), strings.HasSuffix(tarball, ".tgz"):
		flag = " -z"
	case strings.HasSuffix(tarball, ".tar.bz2"):
		flag = " -j"
	case strings.HasSuffix(tarball, ".tar.xz"):
		flag = " -J"
	}
	return fmt.Sprintf("tar -x -f %s -C %s%s", path.Join(workDir, tarball), workDir, flag)
}

// sourceBuild describes a download, configure, make, install sequence.
type sourceBuild struct {
	URL       string
	Directory string
	Prefix    string
	Toolchain recipe.Toolchain

	// Environment is prepended to the configure command after the toolchain.
	Environment   []string
	PreConfigure  []string
	ConfigureOpts []string
	PostInstall   []string
}

func (b sourceBuild) commands() []string {
	tarball := path.Base(b.URL)
	srcDir := path.Join(workDir, b.Directory)

	cmds := download(b.URL)
	cmds = append(cmds, extract(tarball), "cd "+srcDir)
	cmds = append(cmds, b.PreConfigure...)

	var configure []string
	if prefix := b.Toolchain.CommandPrefix(); prefix != "" {
		configure = append(configure, prefix)
	}
	configure = append(configure, b.Environment...)
	configure = append(configure, "./configure", "--prefix="+b.Prefix)
	configure = append(configure, b.ConfigureOpts...)

	cmds = append(cmds,
		strings.Join(configure, " "),
		"make -j$(nproc)",
		"make -j$(nproc) install",
	)
	cmds = append(cmds, b.PostInstall...)
	return append(cmds, fmt.Sprintf("rm -rf %s %s", srcDir, path.Join(workDir, tarball)))
}

// sortedEnv returns the variables ordered by name.
func sortedEnv(vars map[string]string) []recipe.EnvVar {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]recipe.EnvVar, 0, len(names))
	for _, name := range names {
		out = append(out, recipe.EnvVar{Name: name, Value: vars[name]})
	}
	return out
}

// defaultToolchain is used by source builds that were not handed one.
var defaultToolchain = recipe.Toolchain{
	CC:  "gcc",
	CXX: "g++",
	F77: "gfortran",
	F90: "gfortran",
	FC:  "gfortran",
}

// hasLineBreak reports whether s would end a build file instruction early.
func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// checkPrefix rejects install prefixes that are relative or span lines.
func checkPrefix(kind recipe.Kind, prefix string) error {
	if !path.IsAbs(prefix) || hasLineBreak(prefix) {
		return validationError(kind,
			fmt.Sprintf("install prefix %q is not a single-line absolute path", prefix), "prefix", "")
	}
	return nil
}

func validationError(kind recipe.Kind, message, field, hint string) error {
	return oerrors.NewValidationError(message, kind.String(), field, hint)
}
