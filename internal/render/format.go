// Package render serializes recipes into container build files.
package render

import (
	"fmt"
	"strings"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
)

// Format specifies the build file syntax.
type Format string

const (
	// FormatDocker renders a Dockerfile.
	FormatDocker Format = "docker"

	// FormatSingularity renders a Singularity definition file.
	FormatSingularity Format = "singularity"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid checks if the format is known.
func (f Format) IsValid() bool {
	switch f {
	case FormatDocker, FormatSingularity:
		return true
	default:
		return false
	}
}

// ParseFormat parses a format name. An empty string selects Docker.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "docker", "dockerfile":
		return FormatDocker, nil
	case "singularity", "apptainer":
		return FormatSingularity, nil
	default:
		return "", oerrors.NewValidationError(
			fmt.Sprintf("unknown format %q", s), "", "format",
			"Valid formats: "+strings.Join(ValidFormats(), ", "))
	}
}

// ValidFormats returns the valid format names.
func ValidFormats() []string {
	return []string{"docker", "singularity"}
}

// DefaultFilename returns the conventional file name for the format.
func (f Format) DefaultFilename() string {
	if f == FormatSingularity {
		return "Singularity.def"
	}
	return "Dockerfile"
}
