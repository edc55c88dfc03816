package config

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
)

func TestLoaderLoad(t *testing.T) {
	const path = "/home/user/.hpcbase/config.yaml"

	t.Run("loads config from file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		content := `
format: singularity
recipe: ./recipes/hpc.yaml
log:
  timestamps: false
singularity:
  version: "3.5"
`
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))

		cfg, err := NewLoaderFs(fs).Load(path)
		require.NoError(t, err)
		assert.Equal(t, "singularity", cfg.Format)
		assert.Equal(t, "./recipes/hpc.yaml", cfg.Recipe)
		require.NotNil(t, cfg.Log.Timestamps)
		assert.False(t, *cfg.Log.Timestamps)
		assert.Equal(t, "3.5", cfg.Singularity.Version)
	})

	t.Run("returns empty config for missing file", func(t *testing.T) {
		cfg, err := NewLoaderFs(afero.NewMemMapFs()).Load(path)
		require.NoError(t, err)
		assert.Equal(t, &Config{}, cfg)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, path, []byte("registry: example.com\n"), 0o644))

		_, err := NewLoaderFs(fs).Load(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, oerrors.ErrValidation))
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, path, []byte("format: [docker\n"), 0o644))

		_, err := NewLoaderFs(fs).Load(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, oerrors.ErrValidation))
	})

	t.Run("ignores environment", func(t *testing.T) {
		t.Setenv("HPCBASE_FORMAT", "singularity")
		cfg, err := NewLoaderFs(afero.NewMemMapFs()).Load(path)
		require.NoError(t, err)
		assert.Empty(t, cfg.Format)
	})
}

func TestConfigFileExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := NewLoaderFs(fs)

	exists, err := loader.ConfigFileExists("/etc/hpcbase.yaml")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, afero.WriteFile(fs, "/etc/hpcbase.yaml", []byte("{}"), 0o644))
	exists, err = loader.ConfigFileExists("/etc/hpcbase.yaml")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWriteDefault(t *testing.T) {
	const path = "/home/user/.hpcbase/config.yaml"

	t.Run("writes loadable defaults", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, WriteDefault(fs, path, false))

		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# hpcbase configuration.")
		assert.Contains(t, string(data), "format: docker")

		cfg, err := NewLoaderFs(fs).Load(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("keeps existing file without force", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, path, []byte("format: singularity\n"), 0o644))

		err := WriteDefault(fs, path, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, oerrors.ErrValidation))

		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, "format: singularity\n", string(data))
	})

	t.Run("force overwrites", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, path, []byte("format: singularity\n"), 0o644))
		require.NoError(t, WriteDefault(fs, path, true))

		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "format: docker")
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		err := WriteDefault(fs, path, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, oerrors.ErrPermission))
	})
}
