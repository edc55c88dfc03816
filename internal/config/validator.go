package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/opmodel/hpcbase/internal/render"
)

// versionRegex matches a major.minor Singularity version.
var versionRegex = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?$`)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks the values set in cfg. Unset values are valid.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if cfg.Format != "" {
		if _, err := render.ParseFormat(cfg.Format); err != nil {
			errs = append(errs, ValidationError{
				Field:   string(KeyFormat),
				Message: fmt.Sprintf("must be one of %s", strings.Join(render.ValidFormats(), ", ")),
			})
		}
	}

	if cfg.Recipe != "" && strings.TrimSpace(cfg.Recipe) == "" {
		errs = append(errs, ValidationError{
			Field:   string(KeyRecipe),
			Message: "must not be empty or whitespace only",
		})
	}

	if v := cfg.Singularity.Version; v != "" && !versionRegex.MatchString(v) {
		errs = append(errs, ValidationError{
			Field:   string(KeySingularityVersion),
			Message: fmt.Sprintf("%q is not a version such as 3.2", v),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
