package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/hpcbase/internal/output"
	"github.com/opmodel/hpcbase/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(_ *GlobalConfig) *cobra.Command {
	var tools bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show hpcbase version information.

Displays:
  - hpcbase version, commit, and build date
  - CUE SDK and BuildKit parser versions compiled in
  - with --tools, the container build tools found in PATH`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(tools)
		},
	}

	cmd.Flags().BoolVar(&tools, "tools", false, "Detect docker, podman, singularity and apptainer")
	return cmd
}

func runVersion(tools bool) error {
	output.Println(version.Get().String())

	if tools {
		output.Println("")
		output.Println("Build tools:")
		for _, t := range version.DetectTools() {
			output.Println(t.String())
		}
	}
	return nil
}
