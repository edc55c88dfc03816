package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "docker", cfg.Format)
	assert.Equal(t, "gnu-mvapich2-hdf5", cfg.Recipe)
	assert.Equal(t, "3.2", cfg.Singularity.Version)
	require.NotNil(t, cfg.Log.Timestamps)
	assert.True(t, *cfg.Log.Timestamps)
	assert.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantFields []string
	}{
		{name: "empty config", cfg: Config{}},
		{name: "apptainer alias", cfg: Config{Format: "apptainer"}},
		{name: "patch version", cfg: Config{Singularity: SingularityConfig{Version: "3.8.1"}}},
		{
			name:       "unknown format",
			cfg:        Config{Format: "podman"},
			wantFields: []string{"format"},
		},
		{
			name:       "blank recipe",
			cfg:        Config{Recipe: "   "},
			wantFields: []string{"recipe"},
		},
		{
			name: "several problems",
			cfg: Config{
				Format:      "xml",
				Singularity: SingularityConfig{Version: "three"},
			},
			wantFields: []string{"format", "singularity.version"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			fields := make([]string, 0, len(verrs))
			for _, e := range verrs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestKeyEnvVar(t *testing.T) {
	assert.Equal(t, "HPCBASE_FORMAT", KeyFormat.EnvVar())
	assert.Equal(t, "HPCBASE_LOG_TIMESTAMPS", KeyLogTimestamps.EnvVar())
	assert.Equal(t, "HPCBASE_SINGULARITY_VERSION", KeySingularityVersion.EnvVar())
	assert.Equal(t, EnvConfig, Key("config").EnvVar())
}
