package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorEnabled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled())
}

func TestColorEnabled_EmptyNoColorStillDisables(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, ColorEnabled())
}
