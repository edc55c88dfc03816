package recipes

import (
	"fmt"
	"sort"
	"strings"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/recipe"
)

// Entry is a built-in recipe.
type Entry struct {
	Name        string
	Description string

	// Build constructs the recipe from parameters.
	Build func(Params) (*recipe.Recipe, error)
}

// Catalog looks up built-in recipes by name.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog creates a catalog holding entries. Later entries replace
// earlier ones with the same name.
func NewCatalog(entries ...Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		c.entries[e.Name] = e
	}
	return c
}

// Default returns the catalog of recipes shipped with hpcbase.
func Default() *Catalog {
	return NewCatalog(Entry{
		Name:        HPCBaseName,
		Description: "CUDA 10.1 on CentOS 7 with GNU 8, Mellanox OFED, MVAPICH2, HDF5 and Metis",
		Build:       HPCBase,
	})
}

// Get returns the entry registered under name.
func (c *Catalog) Get(name string) (Entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return Entry{}, oerrors.NewNotFoundError(
			fmt.Sprintf("recipe %q not found", name), name,
			"Available recipes: "+strings.Join(c.Names(), ", "))
	}
	return e, nil
}

// Names returns the registered names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the entries sorted by name.
func (c *Catalog) List() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, name := range c.Names() {
		out = append(out, c.entries[name])
	}
	return out
}
