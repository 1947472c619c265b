// Package config loads approot settings from defaults, an optional
// .approot.yaml file, APPROOT_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fenrir/approot/compose"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	// FileName is the config file name without extension.
	FileName = ".approot"
	// EnvPrefix prefixes every environment override, e.g. APPROOT_LOG_LEVEL.
	EnvPrefix = "APPROOT"
)

// Config is the resolved configuration.
type Config struct {
	// Manifest is the declaration file to load; empty means the built-in
	// ImageLink composition.
	Manifest string `mapstructure:"manifest"`
	// Policy is the import override policy, see compose.ParsePolicy.
	Policy string    `mapstructure:"policy"`
	Log    LogConfig `mapstructure:"log"`
	// Page lists the element selectors of the in-memory page. Empty means
	// one element per bootstrap component selector.
	Page []string `mapstructure:"page"`
	// Mounts overrides the selector a component is mounted at, one
	// "Component=selector" entry each. Viper folds map keys to lower case,
	// so component names travel in values.
	Mounts []string `mapstructure:"mounts"`
}

// LogConfig selects the logger built by internal/logging.
type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Policy: compose.LastImportWins.String(),
		Log:    LogConfig{Mode: "development", Level: "warn"},
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// File is an explicit config file; it must exist.
	File string
	// Dir is searched for .approot.yaml when File is empty. Defaults to ".".
	Dir string
	// Flags, when set, override file and environment values for the keys
	// they define (manifest, policy).
	Flags *pflag.FlagSet
}

// Load builds the configuration and returns it with the path of the config
// file that was read, or "" when none was found.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("config: load canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	def := Default()
	v.SetDefault("manifest", def.Manifest)
	v.SetDefault("policy", def.Policy)
	v.SetDefault("log.mode", def.Log.Mode)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("page", []string{})
	v.SetDefault("mounts", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for _, key := range []string{"manifest", "policy"} {
			if f := opts.Flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("config: bind flag %q: %w", key, err)
				}
			}
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	resolved := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("config: read: %w", err)
		}
	} else {
		resolved = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolved, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if _, err := compose.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("config: policy: %w", err)
	}
	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("config: log.level: %w", err)
		}
	}
	if _, err := c.MountMap(); err != nil {
		return err
	}
	return nil
}

// MountMap parses Mounts into component name -> selector.
func (c *Config) MountMap() (map[string]string, error) {
	out := make(map[string]string, len(c.Mounts))
	for i, m := range c.Mounts {
		comp, sel, ok := strings.Cut(m, "=")
		comp, sel = strings.TrimSpace(comp), strings.TrimSpace(sel)
		if !ok || comp == "" || sel == "" {
			return nil, fmt.Errorf("config: mounts[%d]: want Component=selector, got %q", i, m)
		}
		out[comp] = sel
	}
	return out, nil
}

// ComposePolicy returns the parsed override policy.
func (c *Config) ComposePolicy() compose.Policy {
	p, err := compose.ParsePolicy(c.Policy)
	if err != nil {
		return compose.LastImportWins
	}
	return p
}
