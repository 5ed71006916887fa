package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "SEQPREP"

// newViper builds a Viper instance with the standard settings: YAML file
// type, SEQPREP_ env prefix, automatic env binding, and a "." → "_" key
// replacer so that "pipeline.tokenization.k" resolves to
// SEQPREP_PIPELINE_TOKENIZATION_K.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults that must be visible to AutomaticEnv and cannot be expressed
	// as zero-value checks.
	v.SetDefault("pipeline.augmentation.modification_probability", DefaultModificationProbability)
	v.SetDefault("pipeline.tokenization.k", DefaultK)
	v.SetDefault("pipeline.padding.optimal_length", DefaultOptimalLength)
	v.SetDefault("pipeline.truncation.optimal_length", DefaultOptimalLength)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("worker.concurrency", DefaultWorkerConcurrency)
	return v
}

// Load reads the config file at configPath (YAML or JSON, by extension),
// merges SEQPREP_* environment overrides, applies defaults and validates.
func Load(configPath string) (*Config, error) {
	v := newViper()
	setConfigFile(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

func setConfigFile(v *viper.Viper, path string) {
	v.SetConfigFile(path)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		v.SetConfigType("json")
	}
}

// LoadFromEnv builds a Config from SEQPREP_* environment variables and
// defaults alone.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: failed to load %q: %w", p, err)
		}
	}
	return nil
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch re-reads configPath whenever it changes on disk and passes the new
// Config to onChange.  Changes that fail to parse or validate are reported
// to onError (which may be nil) and onChange is not called.  Watch does not
// block.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	setConfigFile(v, configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics on error, for use in main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
