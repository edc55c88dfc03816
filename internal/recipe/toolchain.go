package recipe

import "strings"

// Toolchain describes the compilers a source build is configured with.
// It is produced by a compiler directive and handed to the directives
// that compile against it.
type Toolchain struct {
	CC  string `json:"CC,omitempty"`
	CXX string `json:"CXX,omitempty"`
	F77 string `json:"F77,omitempty"`
	F90 string `json:"F90,omitempty"`
	FC  string `json:"FC,omitempty"`

	CFLAGS   string `json:"CFLAGS,omitempty"`
	CXXFLAGS string `json:"CXXFLAGS,omitempty"`
	FFLAGS   string `json:"FFLAGS,omitempty"`
	FCFLAGS  string `json:"FCFLAGS,omitempty"`
	LDFLAGS  string `json:"LDFLAGS,omitempty"`
}

// IsZero reports whether no compiler or flag is set.
func (t Toolchain) IsZero() bool {
	return t == Toolchain{}
}

// Merge returns a copy of t with every non-empty field of overrides applied.
func (t Toolchain) Merge(overrides Toolchain) Toolchain {
	out := t
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.CC, overrides.CC)
	set(&out.CXX, overrides.CXX)
	set(&out.F77, overrides.F77)
	set(&out.F90, overrides.F90)
	set(&out.FC, overrides.FC)
	set(&out.CFLAGS, overrides.CFLAGS)
	set(&out.CXXFLAGS, overrides.CXXFLAGS)
	set(&out.FFLAGS, overrides.FFLAGS)
	set(&out.FCFLAGS, overrides.FCFLAGS)
	set(&out.LDFLAGS, overrides.LDFLAGS)
	return out
}

// Vars returns the set variables in a fixed order.
func (t Toolchain) Vars() []EnvVar {
	all := []EnvVar{
		{Name: "CC", Value: t.CC},
		{Name: "CFLAGS", Value: t.CFLAGS},
		{Name: "CXX", Value: t.CXX},
		{Name: "CXXFLAGS", Value: t.CXXFLAGS},
		{Name: "F77", Value: t.F77},
		{Name: "F90", Value: t.F90},
		{Name: "FC", Value: t.FC},
		{Name: "FCFLAGS", Value: t.FCFLAGS},
		{Name: "FFLAGS", Value: t.FFLAGS},
		{Name: "LDFLAGS", Value: t.LDFLAGS},
	}
	vars := make([]EnvVar, 0, len(all))
	for _, v := range all {
		if v.Value != "" {
			vars = append(vars, v)
		}
	}
	return vars
}

// CommandPrefix renders the toolchain as shell assignments preceding a command,
// e.g. "CC=gcc CXX=g++".
func (t Toolchain) CommandPrefix() string {
	vars := t.Vars()
	parts := make([]string, 0, len(vars))
	for _, v := range vars {
		value := v.Value
		if strings.ContainsAny(value, " \t") {
			value = "'" + value + "'"
		}
		parts = append(parts, v.Name+"="+value)
	}
	return strings.Join(parts, " ")
}

// Describe returns the set variables as a map for inspection.
func (t Toolchain) Describe() map[string]any {
	out := make(map[string]any)
	for _, v := range t.Vars() {
		out[v.Name] = v.Value
	}
	return out
}
