package config

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
)

// Loader reads the configuration file.
type Loader struct {
	v  *viper.Viper
	fs afero.Fs
}

// NewLoaderFs creates a loader reading from fs.
func NewLoaderFs(fs afero.Fs) *Loader {
	v := viper.New()
	v.SetFs(fs)
	return &Loader{v: v, fs: fs}
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// A missing file yields an empty Config; unknown keys are errors.
// Environment overrides are applied by ResolveAll, not here.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	exists, err := afero.Exists(l.fs, expandedPath)
	if err != nil {
		return nil, fmt.Errorf("checking config file: %w", err)
	}
	if !exists {
		return &Config{}, nil
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")
	if err := l.v.ReadInConfig(); err != nil {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("reading config file: %v", err), expandedPath, "",
			"The config file must be YAML; run 'hpcbase config init --force' to regenerate it")
	}

	var cfg Config
	if err := l.v.UnmarshalExact(&cfg); err != nil {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("decoding config file: %v", err), expandedPath, "",
			"Known keys: format, recipe, log.timestamps, singularity.version")
	}

	return &cfg, nil
}

// ConfigFileExists checks if the config file exists.
func (l *Loader) ConfigFileExists(configFile string) (bool, error) {
	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}
	return afero.Exists(l.fs, expandedPath)
}
