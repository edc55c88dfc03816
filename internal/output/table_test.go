package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	tbl := NewTable("NAME", "DESCRIPTION").
		Row("gnu-mvapich2-hdf5", "HPC base").
		Row("other", "second")

	assert.Equal(t, 2, tbl.Len())

	out := tbl.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "gnu-mvapich2-hdf5")
	assert.Contains(t, out, "second")
}
