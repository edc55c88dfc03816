package cmd

import (
	"github.com/spf13/cobra"
)

// ValuesFlags holds the values files of commands that build recipes
// (build, inspect, diff).
type ValuesFlags struct {
	Values []string
}

// AddTo registers the values flag on the given cobra command.
func (f *ValuesFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.Values, "values", "f", nil,
		"Parameter values file (.cue, .yaml, .json); can be repeated")
}

// RenderFlags holds flags controlling the build file syntax.
type RenderFlags struct {
	Format             string
	SingularityVersion string
}

// AddTo registers the render flags on the given cobra command. Their
// values are resolved against env and config in PersistentPreRunE.
func (f *RenderFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Format, "format", "",
		"Build file format: docker, singularity (env: HPCBASE_FORMAT)")
	cmd.Flags().StringVar(&f.SingularityVersion, "singularity-version", "",
		"Target Singularity version (env: HPCBASE_SINGULARITY_VERSION)")
}
