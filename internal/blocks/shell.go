package blocks

import (
	"fmt"
	"strings"

	"github.com/opmodel/hpcbase/internal/recipe"
)

// Shell runs raw shell commands, chained so that the first failure stops
// the step.
type Shell struct {
	commands []string
}

// NewShell returns a shell directive. At least one command is required
// and blank commands are rejected.
func NewShell(commands ...string) (*Shell, error) {
	if len(commands) == 0 {
		return nil, validationError(recipe.KindShell, "shell directive has no commands", "commands", "")
	}
	for i, c := range commands {
		if strings.TrimSpace(c) == "" {
			return nil, validationError(recipe.KindShell,
				fmt.Sprintf("command %d is blank", i), "commands", "")
		}
		if hasLineBreak(c) {
			return nil, validationError(recipe.KindShell,
				fmt.Sprintf("command %d spans several lines", i), "commands",
				"Give each command as its own list entry; entries are chained with &&")
		}
	}
	cmds := make([]string, len(commands))
	copy(cmds, commands)
	return &Shell{commands: cmds}, nil
}

// Kind implements recipe.Directive.
func (s *Shell) Kind() recipe.Kind { return recipe.KindShell }

// Commands returns a copy of the commands.
func (s *Shell) Commands() []string {
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// Describe implements recipe.Directive.
func (s *Shell) Describe() map[string]any {
	return map[string]any{"commands": s.Commands()}
}

// Instructions implements recipe.Directive.
func (s *Shell) Instructions(recipe.Context) []recipe.Instruction {
	return []recipe.Instruction{recipe.Run(s.commands...)}
}
