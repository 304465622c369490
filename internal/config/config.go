// Package config loads server configuration from a YAML file with
// environment overrides.
//
// The environment wins over the file for the settings it covers, so a
// deployment can flip bypass mode or point at another Redis without editing
// configuration files.
package config

import (
	"fmt"
	"os"
	"reflect"

	"github.com/aretw0/txscope/pkg/domain"
	"github.com/joeshaw/envdecode"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Listen    string           `yaml:"listen"`
	Redis     RedisConfig      `yaml:"redis"`
	Templates []TemplateConfig `yaml:"templates"`
	Bypass    bool             `yaml:"bypass"`
}

// RedisConfig locates the backing store.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// TemplateConfig describes one named session template. Options is a free-form
// map decoded onto the preset selected by ReadOnly, so a template only needs
// to spell out what it overrides.
type TemplateConfig struct {
	Name     string         `yaml:"name"`
	ReadOnly bool           `yaml:"read_only"`
	Options  map[string]any `yaml:"options"`
}

// env holds the environment overrides. TXSCOPE_BYPASS is the process-wide
// signal that selects bypass/test mode.
type env struct {
	RedisAddr string `env:"TXSCOPE_REDIS_ADDR"`
	Bypass    bool   `env:"TXSCOPE_BYPASS,default=false"`
	Listen    string `env:"TXSCOPE_LISTEN"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Redis: RedisConfig{
			Address: "localhost:6379",
			Prefix:  "txscope:",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	var overrides env
	if err := envdecode.Decode(&overrides); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if overrides.RedisAddr != "" {
		cfg.Redis.Address = overrides.RedisAddr
	}
	if overrides.Listen != "" {
		cfg.Listen = overrides.Listen
	}
	if overrides.Bypass {
		cfg.Bypass = true
	}

	return cfg, nil
}

// SessionOptions resolves the template's options: the preset selected by
// ReadOnly, with the Options map decoded on top.
func (t TemplateConfig) SessionOptions() (domain.SessionOptions, error) {
	opts := domain.DefaultSessionOptions()
	if t.ReadOnly {
		opts = domain.ReadOnlySessionOptions()
	}
	if len(t.Options) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToConcernHook,
		),
	})
	if err != nil {
		return opts, fmt.Errorf("failed to build options decoder: %w", err)
	}
	if err := decoder.Decode(t.Options); err != nil {
		return opts, fmt.Errorf("failed to decode options for template %q: %w", t.Name, err)
	}
	return opts, nil
}

// stringToConcernHook maps plain YAML strings onto the domain's typed
// read-concern and read-preference values.
func stringToConcernHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to {
	case reflect.TypeOf(domain.ReadConcern("")):
		return domain.ReadConcern(data.(string)), nil
	case reflect.TypeOf(domain.ReadPreference("")):
		return domain.ReadPreference(data.(string)), nil
	}
	return data, nil
}
