package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nibard/nibard/dialect"
)

const (
	maxWalkDepth = 25
	envPrefix    = "TODOS"
)

// DefaultDSN is used when neither a flag, the environment nor a config file
// name a database.
const DefaultDSN = "sqlite:./todos.sqlite"

// Config represents the todos configuration from todos.yaml.
type Config struct {
	DSN   string      `mapstructure:"dsn" yaml:"dsn"`
	Debug bool        `mapstructure:"debug" yaml:"debug"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
	Stats StatsConfig `mapstructure:"stats" yaml:"stats"`
	List  ListConfig  `mapstructure:"list" yaml:"list"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// StatsConfig holds query statistics settings.
type StatsConfig struct {
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold" yaml:"slow_threshold"`
}

// ListConfig holds list command settings.
type ListConfig struct {
	Limit int `mapstructure:"limit" yaml:"limit"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults. Flags in fs named like a config key
// ("dsn", "debug") are bound to it.
//
// Returns the loaded config, the path to the config file (empty if none
// found), and any error encountered.
func LoadConfig(explicitConfigPath string, fs *pflag.FlagSet) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for _, key := range []string{"dsn", "debug"} {
			if f := fs.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("binding flag %q: %w", key, err)
				}
			}
		}
	}

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, configPath, err
	}
	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dsn", DefaultDSN)
	v.SetDefault("debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("stats.enabled", false)
	v.SetDefault("stats.slow_threshold", 100*time.Millisecond)

	v.SetDefault("list.limit", 0)
}

// Validate checks the values that cannot be checked by decoding.
func (c *Config) Validate() error {
	if _, _, err := dialect.FromDSN(c.DSN); err != nil {
		return fmt.Errorf("dsn: %w", err)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.List.Limit < 0 {
		return fmt.Errorf("list.limit: must not be negative, got %d", c.List.Limit)
	}
	return nil
}

// Dialect returns the dialect named by the DSN.
func (c *Config) Dialect() dialect.Dialect {
	d, _, _ := dialect.FromDSN(c.DSN)
	return d
}

// SlogLevel parses the configured level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// NewLogger returns a logger writing to w in the configured format. Debug
// raises the level to slog.LevelDebug so the statements logged by the debug
// driver show up.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := c.Log.SlogLevel()
	if c.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for todos.yaml or todos.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	dir := cwd
	for range maxWalkDepth {
		for _, name := range []string{"todos.yaml", "todos.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}
