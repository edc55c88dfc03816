package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/opmodel/hpcbase/internal/recipe"
)

// ManifestOptions controls manifest output formatting.
type ManifestOptions struct {
	// Format specifies output format: yaml, json or table.
	Format OutputFormat
	// Writer is the output destination.
	Writer io.Writer
}

// WriteManifest writes a recipe manifest in the requested format.
func WriteManifest(m recipe.Manifest, opts ManifestOptions) error {
	switch opts.Format {
	case FormatJSON:
		encoder := json.NewEncoder(opts.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(m); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case FormatTable:
		_, err := io.WriteString(opts.Writer, RenderManifestTable(m))
		return err
	}

	data, err := ManifestYAML(m)
	if err != nil {
		return err
	}
	_, err = opts.Writer.Write(data)
	return err
}

// ManifestYAML serializes a manifest as YAML with keys in a stable order.
func ManifestYAML(m recipe.Manifest) ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding recipe %s: %w", m.Recipe, err)
	}
	return data, nil
}

// RenderManifestTable renders one table per stage listing its directives.
func RenderManifestTable(m recipe.Manifest) string {
	var b strings.Builder
	b.WriteString(StyleSummary.Render("Recipe " + StyleNoun.Render(m.Recipe)))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.Digest().String()))
	b.WriteString("\n")
	for _, st := range m.Stages {
		b.WriteString("\n")
		title := fmt.Sprintf("Stage %d", st.Index)
		if st.Name != "" {
			title += " (" + StyleNoun.Render(st.Name) + ")"
		}
		b.WriteString(StyleSummary.Render(title))
		b.WriteString("  ")
		b.WriteString(StyleDim.Render(st.Image))
		b.WriteString("\n")

		tbl := NewTable("#", "KIND", "PARAMETERS")
		for j, d := range st.Directives {
			tbl.Row(fmt.Sprintf("%d", j), d.Kind.String(), SummarizeParams(d.Params))
		}
		b.WriteString(tbl.String())
		b.WriteString("\n")
	}
	return b.String()
}

// SummarizeParams renders directive parameters as sorted key=value pairs.
// Lists are shown by length and nested maps by their own pairs.
func SummarizeParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := params[k].(type) {
		case string:
			if k == "text" {
				v = firstLine(v)
			}
			parts = append(parts, k+"="+v)
		case []string:
			parts = append(parts, fmt.Sprintf("%s=[%d]", k, len(v)))
		case []any:
			parts = append(parts, fmt.Sprintf("%s=[%d]", k, len(v)))
		case map[string]any:
			if len(v) > 0 {
				parts = append(parts, k+"={"+SummarizeParams(v)+"}")
			}
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
