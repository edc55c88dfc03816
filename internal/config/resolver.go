package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	oerrors "github.com/opmodel/hpcbase/internal/errors"
	"github.com/opmodel/hpcbase/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// Key names a resolvable configuration value.
type Key string

// Resolvable keys, named by their config file path.
const (
	// KeyFormat is the build file format.
	KeyFormat Key = "format"
	// KeyRecipe is the recipe used when none is named.
	KeyRecipe Key = "recipe"
	// KeyLogTimestamps toggles log timestamps.
	KeyLogTimestamps Key = "log.timestamps"
	// KeySingularityVersion is the targeted Singularity release.
	KeySingularityVersion Key = "singularity.version"
)

// EnvConfig overrides the config file location.
const EnvConfig = "HPCBASE_CONFIG"

const envPrefix = "HPCBASE"

// Keys returns every resolvable key in resolution order.
func Keys() []Key {
	return []Key{KeyFormat, KeyRecipe, KeyLogTimestamps, KeySingularityVersion}
}

// EnvVar returns the environment variable overriding k,
// e.g. HPCBASE_SINGULARITY_VERSION.
func (k Key) EnvVar() string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(string(k), ".", "_"))
}

func (k Key) fromConfig(cfg *Config) string {
	if cfg == nil {
		return ""
	}
	switch k {
	case KeyFormat:
		return cfg.Format
	case KeyRecipe:
		return cfg.Recipe
	case KeyLogTimestamps:
		if cfg.Log.Timestamps != nil {
			return strconv.FormatBool(*cfg.Log.Timestamps)
		}
	case KeySingularityVersion:
		return cfg.Singularity.Version
	}
	return ""
}

// ResolvedValue records a resolved configuration value and its source.
type ResolvedValue struct {
	Key    Key
	Value  string
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveAllOptions contains the inputs of ResolveAll.
type ResolveAllOptions struct {
	// Flags holds values of flags the user set explicitly.
	Flags map[Key]string
	// Config is the loaded config file. Nil means no file.
	Config *Config
}

// Resolved is the effective configuration.
type Resolved struct {
	Format             string
	Recipe             string
	Timestamps         bool
	SingularityVersion string

	// Values lists each key with its source, in Keys order.
	Values []ResolvedValue
}

// ResolveAll resolves every key using precedence:
// (1) flag, (2) HPCBASE_* env, (3) config file, (4) built-in default.
func ResolveAll(opts ResolveAllOptions) (*Resolved, error) {
	defaults := DefaultConfig()
	res := &Resolved{}

	for _, key := range Keys() {
		rv := resolveKey(key, opts.Flags[key], key.fromConfig(opts.Config), key.fromConfig(defaults))
		res.Values = append(res.Values, rv)

		switch key {
		case KeyFormat:
			res.Format = rv.Value
		case KeyRecipe:
			res.Recipe = rv.Value
		case KeySingularityVersion:
			res.SingularityVersion = rv.Value
		case KeyLogTimestamps:
			b, err := strconv.ParseBool(rv.Value)
			if err != nil {
				return nil, oerrors.NewValidationError(
					fmt.Sprintf("invalid boolean %q", rv.Value), string(rv.Source), string(key),
					fmt.Sprintf("Set %s to true or false", key.EnvVar()))
			}
			res.Timestamps = b
		}
	}
	return res, nil
}

func resolveKey(key Key, flagValue, configValue, defaultValue string) ResolvedValue {
	rv := ResolvedValue{Key: key, Shadowed: make(map[ConfigSource]string)}
	envValue := os.Getenv(key.EnvVar())

	candidates := []struct {
		source ConfigSource
		value  string
	}{
		{SourceFlag, flagValue},
		{SourceEnv, envValue},
		{SourceConfig, configValue},
		{SourceDefault, defaultValue},
	}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if rv.Source == "" {
			rv.Value = c.value
			rv.Source = c.source
			continue
		}
		rv.Shadowed[c.source] = c.value
	}
	return rv
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	ConfigPath string
	Source     ConfigSource
	Shadowed   map[ConfigSource]string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) HPCBASE_CONFIG env, (3) ~/.hpcbase/config.yaml
func ResolveConfigPath(flagValue string) (ResolveConfigPathResult, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolveConfigPathResult{}, err
	}

	// Key("config").EnvVar() is HPCBASE_CONFIG.
	rv := resolveKey(Key("config"), flagValue, "", paths.ConfigFile)
	return ResolveConfigPathResult{
		ConfigPath: rv.Value,
		Source:     rv.Source,
		Shadowed:   rv.Shadowed,
	}, nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			if source == SourceDefault {
				continue
			}
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
