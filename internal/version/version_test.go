package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	require.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.CUESDKVersion)
	assert.NotEmpty(t, info.BuildKitVersion)
	assert.Equal(t, Version, info.Version)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:         "v1.0.0",
		GitCommit:       "abc123",
		BuildDate:       "2026-01-29",
		GoVersion:       "go1.25",
		CUESDKVersion:   "v0.15.4",
		BuildKitVersion: "v0.17.3",
	}

	str := info.String()

	for _, want := range []string{"v1.0.0", "abc123", "2026-01-29", "go1.25", "v0.15.4", "v0.17.3"} {
		assert.Contains(t, str, want)
	}
}

func TestVersionOr(t *testing.T) {
	assert.Equal(t, "unknown", versionOr(""))
	assert.Equal(t, "v1.2.3", versionOr("v1.2.3"))
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{name: "docker", output: "Docker version 24.0.7, build afdd53b\n", want: "24.0.7"},
		{name: "podman", output: "podman version 4.9.3\n", want: "4.9.3"},
		{name: "apptainer with release", output: "apptainer version 1.2.5-1.el8\n", want: "1.2.5-1.el8"},
		{name: "singularity v prefix", output: "singularity-ce version v3.11.4\n", want: "3.11.4"},
		{name: "version on later line", output: "build tool\nrelease 2.1\n", want: "2.1"},
		{name: "no version", output: "command not supported\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractVersion(tt.output)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to parse version")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectToolMissing(t *testing.T) {
	info := DetectTool("hpcbase-no-such-tool")
	assert.False(t, info.Found)
	assert.Contains(t, info.String(), "not found")
}

func TestToolInfoString(t *testing.T) {
	info := ToolInfo{Name: "docker", Version: "24.0.7", Path: "/usr/bin/docker", Found: true}
	assert.Contains(t, info.String(), "24.0.7")
	assert.Contains(t, info.String(), "/usr/bin/docker")
}
