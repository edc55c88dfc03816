package blocks

import (
	"strings"

	"github.com/opmodel/hpcbase/internal/recipe"
)

const commentWidth = 78

// Comment documents the build file.
type Comment struct {
	text     string
	reformat bool
}

// NewComment returns a comment directive. With reformat unset the text is
// emitted verbatim line by line; otherwise paragraphs are re-wrapped.
func NewComment(text string, reformat bool) *Comment {
	return &Comment{text: text, reformat: reformat}
}

// Kind implements recipe.Directive.
func (c *Comment) Kind() recipe.Kind { return recipe.KindComment }

// Text returns the comment text as given.
func (c *Comment) Text() string { return c.text }

// Describe implements recipe.Directive.
func (c *Comment) Describe() map[string]any {
	return map[string]any{
		"text":     c.text,
		"reformat": c.reformat,
	}
}

// Instructions implements recipe.Directive.
func (c *Comment) Instructions(recipe.Context) []recipe.Instruction {
	text := strings.Trim(c.text, "\n")
	if c.reformat {
		text = wrap(text, commentWidth)
	}
	return []recipe.Instruction{recipe.Comment(text)}
}

// wrap re-flows blank-line separated paragraphs to width columns.
func wrap(text string, width int) string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}

		var b strings.Builder
		lineLen := 0
		for i, w := range words {
			if i > 0 {
				if lineLen+1+len(w) > width {
					b.WriteByte('\n')
					lineLen = 0
				} else {
					b.WriteByte(' ')
					lineLen++
				}
			}
			b.WriteString(w)
			lineLen += len(w)
		}
		paragraphs = append(paragraphs, b.String())
	}
	return strings.Join(paragraphs, "\n\n")
}
