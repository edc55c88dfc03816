package version

import (
	"bytes"
	"os/exec"
	"regexp"
	"strings"
)

// Tools are the build tools that consume rendered recipes.
var Tools = []string{"docker", "podman", "singularity", "apptainer"}

// toolVersionRegex matches version output like "Docker version 24.0.7, build afdd53b"
// or "apptainer version 1.2.5-1.el8".
var toolVersionRegex = regexp.MustCompile(`v?\d+\.\d+(?:\.\d+)?(?:-[a-zA-Z0-9.]+)?`)

// DetectTools reports every known build tool.
func DetectTools() []ToolInfo {
	infos := make([]ToolInfo, 0, len(Tools))
	for _, name := range Tools {
		infos = append(infos, DetectTool(name))
	}
	return infos
}

// DetectTool finds a build tool in PATH and reads its version.
func DetectTool(name string) ToolInfo {
	path, err := exec.LookPath(name)
	if err != nil {
		return ToolInfo{Name: name}
	}

	version, err := toolVersion(path)
	if err != nil {
		return ToolInfo{
			Name:    name,
			Path:    path,
			Found:   true,
			Message: "failed to get version: " + err.Error(),
		}
	}

	return ToolInfo{
		Name:    name,
		Version: version,
		Path:    path,
		Found:   true,
	}
}

// toolVersion executes '<tool> --version' and extracts the version string.
func toolVersion(path string) (string, error) {
	cmd := exec.Command(path, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", err
	}

	return extractVersion(out.String())
}

// extractVersion extracts the first version number from tool output.
func extractVersion(output string) (string, error) {
	firstLine, _, _ := strings.Cut(output, "\n")
	match := toolVersionRegex.FindString(firstLine)
	if match == "" {
		match = toolVersionRegex.FindString(output)
	}
	if match == "" {
		return "", &versionParseError{output: output}
	}

	return strings.TrimPrefix(match, "v"), nil
}

// versionParseError indicates failure to parse tool version output.
type versionParseError struct {
	output string
}

func (e *versionParseError) Error() string {
	return "failed to parse version from output: " + strings.TrimSpace(e.output)
}
