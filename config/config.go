// Package config loads the tool's configuration with the usual
// precedence: command-line flags over environment variables over a YAML
// config file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/psych-ds/psychds-r-sub000/profile"
)

// envPrefix namespaces the environment variables, e.g.
// DATADICT_SAMPLE_ROWS=500.
const envPrefix = "DATADICT_"

// Config holds every externally tunable parameter. The engine itself
// only consumes the sampling and missing-token settings; the rest
// belongs to the CLI surfaces.
type Config struct {
	// Literal cell values treated as absent data.
	MissingTokens []string `koanf:"missing_tokens"`

	// Rows sampled per column during classification and during the
	// categorical re-scan.
	SampleRows            int `koanf:"sample_rows"`
	CategoricalSampleRows int `koanf:"categorical_sample_rows"`

	// Categorical vocabularies above this size are flagged for manual
	// curation instead of aggregated.
	MaxCategoricalValues int `koanf:"max_categorical_values"`

	// slog level name: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Publish destination.
	Database string `koanf:"database"`
	Schema   string `koanf:"schema"`
	Table    string `koanf:"table"`
}

// configFileNames are searched in the working directory when no explicit
// config file is given.
var configFileNames = []string{"datadict.yaml", "datadict.yml"}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	return ""
}

// Load assembles the configuration. flags may be nil; only flags that
// were explicitly set take part.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"missing_tokens":          profile.DefaultMissingTokens,
		"sample_rows":             10000,
		"categorical_sample_rows": 1000,
		"max_categorical_values":  50,
		"log_level":               "warn",
		"schema":                  "public",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if name := findConfigFile(cfgFile); name != "" {
		if err := k.Load(file.Provider(name), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", name, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.SampleRows <= 0 {
		return nil, fmt.Errorf("sample_rows must be positive, got %d", cfg.SampleRows)
	}
	if cfg.CategoricalSampleRows <= 0 {
		return nil, fmt.Errorf("categorical_sample_rows must be positive, got %d", cfg.CategoricalSampleRows)
	}

	return &cfg, nil
}
