// Package loader reads recipe parameter overrides and recipe documents
// from CUE, YAML and JSON files.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/recipes"
)

// Extensions lists the file extensions the loader accepts.
var Extensions = []string{".cue", ".json", ".yaml", ".yml"}

// ValuesLoader loads CUE values from files.
type ValuesLoader struct {
	ctx *cue.Context
}

// NewValuesLoader creates a loader using ctx, or a fresh CUE context when
// ctx is nil.
func NewValuesLoader(ctx *cue.Context) *ValuesLoader {
	if ctx == nil {
		ctx = cuecontext.New()
	}
	return &ValuesLoader{ctx: ctx}
}

// Supported reports whether path has an extension the loader reads.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile loads a single file as a CUE value.
func (l *ValuesLoader) LoadFile(path string) (cue.Value, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return cue.Value{}, oerrors.NewValidationError(
			fmt.Sprintf("unsupported file format %q", ext), path, "",
			"Use one of "+strings.Join(Extensions, ", "))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cue.Value{}, oerrors.NewNotFoundError("file not found", path, "")
		}
		return cue.Value{}, fmt.Errorf("reading %s: %w", path, err)
	}

	switch ext {
	case ".cue":
		return l.compile(data, path)
	case ".json":
		if !json.Valid(data) {
			return cue.Value{}, oerrors.NewValidationError("invalid JSON", path, "", "")
		}
		return l.compile(data, path)
	default:
		var parsed any
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return cue.Value{}, oerrors.NewValidationError(
				fmt.Sprintf("parsing YAML: %v", err), path, "", "")
		}
		if parsed == nil {
			parsed = map[string]any{}
		}
		jsonData, err := json.Marshal(normalizeYAML(parsed))
		if err != nil {
			return cue.Value{}, fmt.Errorf("converting %s to JSON: %w", path, err)
		}
		return l.compile(jsonData, path)
	}
}

// LoadValues loads every path and unifies the results in order. With no
// paths it returns an empty struct.
func (l *ValuesLoader) LoadValues(paths ...string) (cue.Value, error) {
	result := l.ctx.CompileString("{}")
	for _, path := range paths {
		v, err := l.LoadFile(path)
		if err != nil {
			return cue.Value{}, err
		}
		result = result.Unify(v)
		if err := result.Err(); err != nil {
			return cue.Value{}, oerrors.NewValidationError(
				fmt.Sprintf("conflicting values: %v", err), path, "",
				"Values files are unified, so a key may only be set to one value")
		}
	}
	return result, nil
}

func (l *ValuesLoader) compile(data []byte, path string) (cue.Value, error) {
	v := l.ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, oerrors.NewValidationError(
			fmt.Sprintf("compiling: %v", err), path, "", "")
	}
	return v, nil
}

// DecodeParams decodes v over defaults. Keys not set in v keep their
// default value; unknown keys and mistyped values are rejected.
func DecodeParams(v cue.Value, defaults recipes.Params) (recipes.Params, error) {
	hint := "Known parameters: " + strings.Join(paramNames(v.Context()), ", ")
	p := defaults
	if err := decodeAs(v, defParams, "values", hint, &p); err != nil {
		return recipes.Params{}, err
	}
	return p, nil
}

func paramNames(ctx *cue.Context) []string {
	def, err := definition(ctx, defParams)
	if err != nil {
		return nil
	}
	return fieldNames(def)
}

// normalizeYAML converts YAML-specific types to JSON-compatible types.
// YAML allows map keys of any type, but JSON requires strings.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = normalizeYAML(v)
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[fmt.Sprintf("%v", k)] = normalizeYAML(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = normalizeYAML(v)
		}
		return result
	default:
		return v
	}
}
