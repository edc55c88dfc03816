package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/hpcbase/internal/output"
	"github.com/opmodel/hpcbase/internal/recipes"
)

// NewListCmd creates the list command.
func NewListCmd(gc *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List built-in recipes",
		Long: `List the recipes shipped with hpcbase.

Each recipe is built with its default parameters to count its stages
and directives.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(gc)
		},
	}
}

func runList(gc *GlobalConfig) error {
	tbl := output.NewTable("NAME", "STAGES", "DIRECTIVES", "DESCRIPTION")
	for _, entry := range gc.Catalog.List() {
		r, err := entry.Build(recipes.DefaultParams())
		if err != nil {
			return fmt.Errorf("building recipe %s: %w", entry.Name, err)
		}

		directives := 0
		for _, s := range r.Stages() {
			directives += s.Len()
		}
		tbl.Row(entry.Name, fmt.Sprintf("%d", len(r.Stages())), fmt.Sprintf("%d", directives), entry.Description)
	}

	output.Println(tbl.String())
	return nil
}
