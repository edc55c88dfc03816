package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
)

// DockerfileStage summarizes one stage of a parsed Dockerfile.
type DockerfileStage struct {
	Image string
	Name  string

	// Instructions counts the instructions of the stage, FROM included.
	Instructions int
}

// ValidateDockerfile parses Dockerfile text and checks its stage layout:
// at least one FROM, no instruction before the first FROM other than
// ARG, and every COPY --from naming an earlier stage.
func ValidateDockerfile(data []byte) ([]DockerfileStage, error) {
	res, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("parsing Dockerfile: %v", err), "Dockerfile", "", "")
	}

	var stages []DockerfileStage
	aliases := make(map[string]bool)

	for _, node := range res.AST.Children {
		loc := fmt.Sprintf("Dockerfile:%d", node.StartLine)
		instr := strings.ToLower(node.Value)

		if instr == "from" {
			// The previous stage alias becomes visible to the stages after it.
			if n := len(stages); n > 0 && stages[n-1].Name != "" {
				aliases[stages[n-1].Name] = true
			}

			st := DockerfileStage{Instructions: 1}
			if node.Next != nil {
				st.Image = node.Next.Value
				if as := node.Next.Next; as != nil && strings.EqualFold(as.Value, "as") && as.Next != nil {
					st.Name = as.Next.Value
				}
			}
			if st.Image == "" {
				return nil, oerrors.NewValidationError("FROM without an image", loc, "", "")
			}
			stages = append(stages, st)
			continue
		}

		if len(stages) == 0 {
			if instr == "arg" {
				continue
			}
			return nil, oerrors.NewValidationError(
				fmt.Sprintf("%s before the first FROM", strings.ToUpper(instr)), loc, "", "")
		}
		current := &stages[len(stages)-1]
		current.Instructions++

		if instr == "copy" {
			for _, flag := range node.Flags {
				from, ok := strings.CutPrefix(flag, "--from=")
				if !ok {
					continue
				}
				if !aliases[from] {
					return nil, oerrors.NewValidationError(
						fmt.Sprintf("COPY --from references unknown stage %q", from), loc, "from",
						"Name the source stage with FROM ... AS "+from)
				}
			}
		}
	}

	if len(stages) == 0 {
		return nil, oerrors.NewValidationError("Dockerfile has no FROM instruction", "Dockerfile", "", "")
	}
	return stages, nil
}
