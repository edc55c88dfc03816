package render

import (
	"fmt"
	"strings"

	"github.com/opmodel/hpcbase/internal/recipe"
)

const indent = "    "

func renderSingularity(r *recipe.Recipe) string {
	stages := r.Stages()
	multi := len(stages) > 1

	var b strings.Builder
	first := true
	for idx, s := range stages {
		name := s.Name()
		if name == "" {
			name = fmt.Sprintf("stage%d", idx)
		}

		for _, g := range stageGroups(s) {
			for i, in := range g {
				text := singularityInstruction(in, name, multi)
				if text == "" {
					continue
				}
				if !first && (i == 0 || in.Kind == recipe.InstrComment) {
					b.WriteByte('\n')
				}
				b.WriteString(text)
				b.WriteByte('\n')
				first = false
			}
		}
	}
	return b.String()
}

func singularityInstruction(in recipe.Instruction, stage string, multi bool) string {
	var lines []string
	switch in.Kind {
	case recipe.InstrFrom:
		lines = []string{"BootStrap: docker", "From: " + in.Image}
		if multi {
			lines = append(lines, "Stage: "+stage)
		}
		lines = append(lines, "%post", indent+". /.singularity.d/env/10-docker*.sh")
	case recipe.InstrComment:
		lines = commentLines(in.Text)
	case recipe.InstrRun:
		if len(in.Commands) == 0 {
			return ""
		}
		lines = append(lines, "%post", indent+"cd /")
		for _, c := range in.Commands {
			lines = append(lines, indent+c)
		}
	case recipe.InstrEnv:
		if len(in.Env) == 0 {
			return ""
		}
		exports := make([]string, len(in.Env))
		for i, v := range in.Env {
			exports[i] = indent + "export " + v.Name + "=" + quoteEnv(v.Value)
		}
		lines = append(lines, "%environment")
		lines = append(lines, exports...)
		lines = append(lines, "%post")
		lines = append(lines, exports...)
	case recipe.InstrCopy:
		lines = append(lines, "%files from "+in.From)
		for _, src := range in.Sources {
			lines = append(lines, indent+src+" "+in.Dest)
		}
	default:
		return ""
	}
	return strings.Join(lines, "\n")
}
