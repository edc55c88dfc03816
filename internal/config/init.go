package config

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
)

const configHeader = `# hpcbase configuration.
# Values here are overridden by HPCBASE_* environment variables and flags.
`

// DefaultConfigYAML returns the contents written by WriteDefault.
func DefaultConfigYAML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(DefaultConfig()); err != nil {
		return nil, fmt.Errorf("encoding default config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding default config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is kept unless force is set.
func WriteDefault(fs afero.Fs, path string, force bool) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return fmt.Errorf("expanding config path: %w", err)
	}

	exists, err := afero.Exists(fs, expanded)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if exists && !force {
		return oerrors.NewValidationError(
			"config file already exists", expanded, "",
			"Use --force to overwrite it")
	}

	data, err := DefaultConfigYAML()
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return oerrors.NewPermissionError("creating config directory",
			map[string]string{"path": filepath.Dir(expanded), "cause": err.Error()},
			"Check that the parent directory is writable, or pass --config")
	}
	if err := afero.WriteFile(fs, expanded, data, 0o644); err != nil {
		return oerrors.NewPermissionError("writing config file",
			map[string]string{"path": expanded, "cause": err.Error()},
			"Check that the file is writable, or pass --config")
	}
	return nil
}
