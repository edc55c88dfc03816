package loader

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
)

//go:embed schema.cue
var schemaCUE string

// Definitions in schema.cue.
const (
	defParams   = "#Params"
	defDocument = "#Document"
)

// definition compiles schema.cue in ctx and returns the named definition.
// Values can only be unified within one context, so the schema is
// compiled in the context of the value it checks.
func definition(ctx *cue.Context, name string) (cue.Value, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compiling schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath(name))
	if !def.Exists() {
		return cue.Value{}, fmt.Errorf("schema has no definition %s", name)
	}
	return def, nil
}

// decodeAs checks v against the named closed definition and decodes the
// result into out. Fields already set in out are kept unless v sets them.
func decodeAs(v cue.Value, name, source, hint string, out any) error {
	def, err := definition(v.Context(), name)
	if err != nil {
		return err
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return schemaError(err, source, hint)
	}
	if err := unified.Decode(out); err != nil {
		return schemaError(err, source, hint)
	}
	return nil
}

// schemaError converts a CUE error into a validation error located at the
// path of its first failure.
func schemaError(err error, source, hint string) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return oerrors.NewValidationError(err.Error(), source, "", hint)
	}

	first := errs[0]
	format, args := first.Msg()
	msg := fmt.Sprintf(format, args...)
	if n := len(errs) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}

	loc := source
	if p := pathLocation(first.Path()); p != "" {
		loc = source + ": " + p
	}
	return oerrors.NewValidationError(msg, loc, "", hint)
}

// pathLocation renders a CUE path as stages[0].directives[1].shell,
// dropping definition selectors.
func pathLocation(path []string) string {
	var b strings.Builder
	for _, sel := range path {
		if strings.HasPrefix(sel, "#") {
			continue
		}
		if _, err := strconv.Atoi(sel); err == nil {
			b.WriteString("[" + sel + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(sel)
	}
	return b.String()
}

// fieldNames returns the sorted field names of a definition.
func fieldNames(def cue.Value) []string {
	iter, err := def.Fields(cue.Optional(true))
	if err != nil {
		return nil
	}
	var names []string
	for iter.Next() {
		names = append(names, iter.Selector().Unquoted())
	}
	sort.Strings(names)
	return names
}
