// Package config layers the server configuration from its sources:
// built-in defaults, an optional YAML file, and FENCEMCP_* environment
// variables. Precedence across sources is decided by the caller; Merge
// only overlays fields the higher-priority source actually set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/c3mb0/fencemcp/internal/runner"
)

// Config controls where the server is allowed to operate and how it
// reports. The zero value means "unset" for every field.
type Config struct {
	Roots          []string      `yaml:"roots"`
	LogFile        string        `yaml:"log_file"`
	Debug          bool          `yaml:"debug"`
	Compat         bool          `yaml:"compat"`
	SingleInstance bool          `yaml:"single_instance"`
	ExecTimeout    time.Duration `yaml:"exec_timeout"`
}

// Default returns the configuration used when no source overrides it.
func Default() Config {
	return Config{ExecTimeout: runner.DefaultTimeout}
}

// Merge overlays over onto c and returns the result. Zero-valued
// fields in over are treated as unset and leave c untouched; explicit
// flag overrides are applied by the CLI after merging.
func (c Config) Merge(over Config) Config {
	if len(over.Roots) > 0 {
		c.Roots = over.Roots
	}
	if over.LogFile != "" {
		c.LogFile = over.LogFile
	}
	if over.Debug {
		c.Debug = true
	}
	if over.Compat {
		c.Compat = true
	}
	if over.SingleInstance {
		c.SingleInstance = true
	}
	if over.ExecTimeout > 0 {
		c.ExecTimeout = over.ExecTimeout
	}
	return c
}

// LoadFile reads a YAML config file. Unknown and duplicate keys are
// errors so typos surface at startup instead of being ignored.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg,
		yaml.Strict(),
		yaml.CustomUnmarshaler[time.Duration](unmarshalDuration),
	); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func unmarshalDuration(dst *time.Duration, b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// FromEnv collects overrides from FENCEMCP_* environment variables.
// FENCEMCP_ROOTS holds a path list in the platform's $PATH syntax.
// Values that fail to parse are ignored.
func FromEnv() Config {
	var cfg Config
	if v := os.Getenv("FENCEMCP_ROOTS"); v != "" {
		for _, p := range filepath.SplitList(v) {
			if p != "" {
				cfg.Roots = append(cfg.Roots, p)
			}
		}
	}
	if v := os.Getenv("FENCEMCP_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("FENCEMCP_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v := os.Getenv("FENCEMCP_COMPAT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Compat = b
		}
	}
	if v := os.Getenv("FENCEMCP_EXEC_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ExecTimeout = d
		}
	}
	return cfg
}
