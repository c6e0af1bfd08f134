// Package config loads interpreter configuration from a file.
//
// Configuration can be specified in a JSON file named cb.json or
// .cbrc. The config file is searched for in the current directory and
// parent directories, walking upward until one is found or the
// filesystem root is reached.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Options controls driver behavior. All fields use sensible defaults
// when unset; a Config only overrides what it explicitly sets.
type Options struct {
	// Debug enables a per-function call-count profile (pprof format)
	// of the run and verbose trace output on stderr.
	Debug bool
	// WarnUnreachable enables the post-registration unreachable-function
	// pass (see internal/dce).
	WarnUnreachable bool
	// MaxCallDepth bounds recursion to catch runaway recursive programs
	// with a clear error instead of a Go stack overflow.
	MaxCallDepth int
}

// DefaultOptions returns the options used when no config file and no
// CLI flags are given.
func DefaultOptions() Options {
	return Options{
		Debug:           false,
		WarnUnreachable: true,
		MaxCallDepth:    2000,
	}
}

// Config is the on-disk JSON shape. Pointer fields are optional and
// leave the corresponding Options field at its default when absent.
type Config struct {
	Debug           *bool `json:"debug,omitempty"`
	WarnUnreachable *bool `json:"warnUnreachable,omitempty"`
	MaxCallDepth    *int  `json:"maxCallDepth,omitempty"`
}

// ConfigFileNames are searched for, in order of preference, in each
// candidate directory.
var ConfigFileNames = []string{"cb.json", ".cbrc", ".cbrc.json"}

// Load searches for a config file starting at startDir and walking up
// through parent directories. It returns (nil, "", nil) if none is
// found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ToOptions converts a Config to Options, using defaults for unset fields.
func (c *Config) ToOptions() Options {
	opts := DefaultOptions()
	if c == nil {
		return opts
	}
	if c.Debug != nil {
		opts.Debug = *c.Debug
	}
	if c.WarnUnreachable != nil {
		opts.WarnUnreachable = *c.WarnUnreachable
	}
	if c.MaxCallDepth != nil {
		opts.MaxCallDepth = *c.MaxCallDepth
	}
	return opts
}

// CLIOverrides carries flags from the command line; nil means "not
// specified on the CLI" and leaves the config-file (or default) value
// in place.
type CLIOverrides struct {
	Debug           *bool
	WarnUnreachable *bool
	MaxCallDepth    *int
}

// Merge merges CLI overrides on top of the config file's options. CLI
// flags win when present.
func (c *Config) Merge(cli CLIOverrides) Options {
	opts := c.ToOptions()
	if cli.Debug != nil {
		opts.Debug = *cli.Debug
	}
	if cli.WarnUnreachable != nil {
		opts.WarnUnreachable = *cli.WarnUnreachable
	}
	if cli.MaxCallDepth != nil {
		opts.MaxCallDepth = *cli.MaxCallDepth
	}
	return opts
}
