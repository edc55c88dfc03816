package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
)

// clearEnv unsets every HPCBASE_* variable for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range Keys() {
		t.Setenv(k.EnvVar(), "")
	}
	t.Setenv(EnvConfig, "")
}

func TestResolveAll(t *testing.T) {
	falseVal := false

	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		res, err := ResolveAll(ResolveAllOptions{})
		require.NoError(t, err)

		assert.Equal(t, "docker", res.Format)
		assert.Equal(t, "gnu-mvapich2-hdf5", res.Recipe)
		assert.True(t, res.Timestamps)
		assert.Equal(t, "3.2", res.SingularityVersion)
		require.Len(t, res.Values, len(Keys()))
		for _, v := range res.Values {
			assert.Equal(t, SourceDefault, v.Source, v.Key)
			assert.Empty(t, v.Shadowed, v.Key)
		}
	})

	t.Run("flag beats env beats config", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HPCBASE_FORMAT", "singularity")

		res, err := ResolveAll(ResolveAllOptions{
			Flags:  map[Key]string{KeyFormat: "docker"},
			Config: &Config{Format: "apptainer"},
		})
		require.NoError(t, err)

		format := res.Values[0]
		assert.Equal(t, KeyFormat, format.Key)
		assert.Equal(t, "docker", format.Value)
		assert.Equal(t, SourceFlag, format.Source)
		assert.Equal(t, "singularity", format.Shadowed[SourceEnv])
		assert.Equal(t, "apptainer", format.Shadowed[SourceConfig])
		assert.Equal(t, "docker", format.Shadowed[SourceDefault])
	})

	t.Run("env beats config", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HPCBASE_SINGULARITY_VERSION", "3.7")

		res, err := ResolveAll(ResolveAllOptions{
			Config: &Config{Singularity: SingularityConfig{Version: "3.5"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "3.7", res.SingularityVersion)
		assert.Equal(t, SourceEnv, res.Values[3].Source)
		assert.NotContains(t, res.Values[3].Shadowed, SourceFlag)
	})

	t.Run("config timestamps", func(t *testing.T) {
		clearEnv(t)
		res, err := ResolveAll(ResolveAllOptions{
			Config: &Config{Log: LogConfig{Timestamps: &falseVal}},
		})
		require.NoError(t, err)
		assert.False(t, res.Timestamps)
		assert.Equal(t, SourceConfig, res.Values[2].Source)
	})

	t.Run("invalid boolean", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HPCBASE_LOG_TIMESTAMPS", "sometimes")

		_, err := ResolveAll(ResolveAllOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, oerrors.ErrValidation))
		assert.Contains(t, err.Error(), "HPCBASE_LOG_TIMESTAMPS")
	})
}

func TestResolveConfigPath(t *testing.T) {
	t.Run("flag precedence", func(t *testing.T) {
		t.Setenv(EnvConfig, "/env/config.yaml")
		res, err := ResolveConfigPath("/flag/config.yaml")
		require.NoError(t, err)

		assert.Equal(t, "/flag/config.yaml", res.ConfigPath)
		assert.Equal(t, SourceFlag, res.Source)
		assert.Equal(t, "/env/config.yaml", res.Shadowed[SourceEnv])
		assert.Contains(t, res.Shadowed, SourceDefault)
	})

	t.Run("env precedence", func(t *testing.T) {
		t.Setenv(EnvConfig, "/env/config.yaml")
		res, err := ResolveConfigPath("")
		require.NoError(t, err)
		assert.Equal(t, "/env/config.yaml", res.ConfigPath)
		assert.Equal(t, SourceEnv, res.Source)
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		res, err := ResolveConfigPath("")
		require.NoError(t, err)
		assert.Equal(t, SourceDefault, res.Source)
		assert.Contains(t, res.ConfigPath, ".hpcbase")
	})
}
