// Package config loads gokanprop settings from a YAML file and
// GOKANPROP_* environment variables. Environment variables win over the
// file, and command line flags win over both.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

const envPrefix = "GOKANPROP_"

// Log configures the structured logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Search configures solution enumeration.
type Search struct {
	Heuristic string `yaml:"heuristic"`
	Limit     int    `yaml:"limit"`
}

// Config is the full tool configuration.
type Config struct {
	Engine engine.Config `yaml:"engine"`
	Search Search        `yaml:"search"`
	Log    Log           `yaml:"log"`
	// Workers bounds how many model files are checked concurrently.
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Engine:  *engine.DefaultConfig(),
		Search:  Search{Heuristic: "dom"},
		Log:     Log{Level: "info", Format: "text"},
		Workers: 4,
	}
}

// Load reads path on top of the defaults, then applies the environment. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes YAML into cfg, rejecting unknown keys. Keys missing from
// data keep their current values.
func Parse(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// ApplyEnv overrides cfg with GOKANPROP_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(envPrefix + "LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := lookup(envPrefix + "HEURISTIC"); ok {
		c.Search.Heuristic = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"WORKERS", &c.Workers},
		{"MAX_INVOCATIONS", &c.Engine.MaxInvocations},
		{"LIMIT", &c.Search.Limit},
	}
	for _, e := range ints {
		v, ok := lookup(envPrefix + e.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, e.name, err)
		}
		*e.dst = n
	}

	if v, ok := lookup(envPrefix + "DETECT_REIFIED_INCONSISTENCY"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sDETECT_REIFIED_INCONSISTENCY: %w", envPrefix, err)
		}
		c.Engine.DetectReifiedInconsistency = b
	}
	return nil
}

// Validate reports settings that can never work.
func (c Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.Engine.MaxInvocations < 0 {
		errs = append(errs, fmt.Errorf("engine.max_invocations must not be negative, got %d", c.Engine.MaxInvocations))
	}
	if c.Search.Limit < 0 {
		errs = append(errs, fmt.Errorf("search.limit must not be negative, got %d", c.Search.Limit))
	}
	return errors.Join(errs...)
}
