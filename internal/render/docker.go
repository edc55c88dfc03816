package render

import (
	"strings"

	"github.com/opmodel/hpcbase/internal/recipe"
)

const continuation = " \\\n    "

func renderDocker(r *recipe.Recipe) string {
	var b strings.Builder
	first := true
	for _, s := range r.Stages() {
		for _, g := range stageGroups(s) {
			for i, in := range g {
				text := dockerInstruction(in)
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

func dockerInstruction(in recipe.Instruction) string {
	switch in.Kind {
	case recipe.InstrFrom:
		if in.As != "" {
			return "FROM " + in.Image + " AS " + in.As
		}
		return "FROM " + in.Image
	case recipe.InstrComment:
		return strings.Join(commentLines(in.Text), "\n")
	case recipe.InstrRun:
		if len(in.Commands) == 0 {
			return ""
		}
		return "RUN " + strings.Join(in.Commands, " && \\\n    ")
	case recipe.InstrEnv:
		if len(in.Env) == 0 {
			return ""
		}
		pairs := make([]string, len(in.Env))
		for i, v := range in.Env {
			pairs[i] = v.Name + "=" + quoteEnv(v.Value)
		}
		return "ENV " + strings.Join(pairs, continuation)
	case recipe.InstrCopy:
		args := append([]string{"COPY", "--from=" + in.From}, in.Sources...)
		return strings.Join(append(args, in.Dest), " ")
	}
	return ""
}

// quoteEnv quotes values the Dockerfile ENV syntax would split.
func quoteEnv(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\"'\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}
