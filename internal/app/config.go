package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix of every environment override, e.g. BLAH_HOME.
const envPrefix = "blah"

// Config holds runtime options. Sources, later wins: Default, the YAML
// file, BLAH_* environment variables, then command-line flags applied
// by the caller.
type Config struct {
	// Home holds the sealed signing key, e.g. $HOME/.blah.
	Home string `yaml:"home" split_words:"true"`
	// Database is the SQLite room database. Defaults to <Home>/blah.db.
	Database string `yaml:"database" split_words:"true"`
	// Passphrase unlocks the signing key. Environment only.
	Passphrase string `yaml:"-" split_words:"true"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" split_words:"true"`
	// ScryptCost is the scrypt N for newly sealed keys. Zero keeps the default.
	ScryptCost int `yaml:"scrypt_cost" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	home := ".blah"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".blah")
	}
	return Config{Home: home, LogLevel: "info"}
}

// Load builds a Config from the defaults, the YAML file at path and the
// environment. An empty path falls back to $BLAH_CONFIG; if that is
// empty too no file is read.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("BLAH_CONFIG")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// Validate checks option values.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("config: home is required")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.ScryptCost < 0 || c.ScryptCost&(c.ScryptCost-1) != 0 || c.ScryptCost == 1 {
		return fmt.Errorf("config: scrypt_cost %d is not a power of two", c.ScryptCost)
	}
	return nil
}

// DatabasePath returns Database, or blah.db under Home.
func (c Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.Home, "blah.db")
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return level, nil
}
