// Package version provides version information for the hpcbase CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// Module paths whose versions are reported.
const (
	cueModule      = "cuelang.org/go"
	buildkitModule = "github.com/moby/buildkit"
)

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`

	// CUESDKVersion is the CUE SDK version compiled in.
	CUESDKVersion string `json:"cueSDKVersion"`

	// BuildKitVersion is the version of the Dockerfile parser compiled in.
	BuildKitVersion string `json:"buildkitVersion"`
}

// Get returns the current version information.
func Get() Info {
	deps := dependencyVersions()
	return Info{
		Version:         Version,
		GitCommit:       GitCommit,
		BuildDate:       BuildDate,
		GoVersion:       runtime.Version(),
		CUESDKVersion:   versionOr(deps[cueModule]),
		BuildKitVersion: versionOr(deps[buildkitModule]),
	}
}

func dependencyVersions() map[string]string {
	versions := make(map[string]string)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return versions
	}
	for _, dep := range info.Deps {
		if dep.Replace != nil {
			versions[dep.Path] = dep.Replace.Version
			continue
		}
		versions[dep.Path] = dep.Version
	}
	return versions
}

func versionOr(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("hpcbase:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s\n\nLibraries:\n  CUE SDK:  %s\n  BuildKit: %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion, i.CUESDKVersion, i.BuildKitVersion)
}

// ToolInfo describes a container build tool found on the host.
type ToolInfo struct {
	// Name is the binary name.
	Name string `json:"name"`

	// Version is the tool version.
	Version string `json:"version,omitempty"`

	// Path is the path to the binary.
	Path string `json:"path,omitempty"`

	// Found indicates if the binary was found.
	Found bool `json:"found"`

	// Message provides additional information when detection failed.
	Message string `json:"message,omitempty"`
}

// String returns a one-line description of the tool.
func (t ToolInfo) String() string {
	if !t.Found {
		return fmt.Sprintf("  %-12s not found", t.Name)
	}
	if t.Version == "" {
		return fmt.Sprintf("  %-12s %s (%s)", t.Name, t.Path, t.Message)
	}
	return fmt.Sprintf("  %-12s %s (%s)", t.Name, t.Version, t.Path)
}
