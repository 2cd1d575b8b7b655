// Package config resolves the settings of the accelerate command line.
//
// Sources are applied in order, later ones winning: built-in defaults, the YAML
// file, the .env file, then ACCELERATE_* environment variables. Flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/accelerate/internal/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is read from the working directory when no file is given.
	DefaultFile = "accelerate.yaml"
	// DefaultEnvFile is read from the working directory when no env file is given.
	DefaultEnvFile = ".env"
	// EnvPrefix prefixes every environment variable the command reads.
	EnvPrefix = "ACCELERATE_"
)

// Config holds the resolved settings.
type Config struct {
	// Target is the driver URL, e.g. "sqlite://app.db".
	Target string `yaml:"target"`
	// Directory holds the motion catalog.
	Directory string `yaml:"directory"`
	LogLevel  string `yaml:"log_level"`
	// Listen is the address used by serve.
	Listen  string        `yaml:"listen"`
	Metrics bool          `yaml:"metrics"`
	LockKey string        `yaml:"lock_key"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Directory: ".",
		LogLevel:  "warn",
		Listen:    ":8080",
	}
}

// Source tells Load where to look.
type Source struct {
	// File is the YAML file. Empty means DefaultFile, which may be missing.
	// An explicitly named file must exist.
	File string
	// EnvFile is the dotenv file. Empty means DefaultEnvFile. Missing files are ignored.
	EnvFile string
	// Getenv reads the process environment. Defaults to os.Getenv.
	Getenv func(string) string
}

// Load resolves the configuration from src.
func Load(src Source) (Config, error) {
	cfg := Default()

	if err := cfg.readFile(src.File); err != nil {
		return Config{}, err
	}

	envFile := src.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	dotenv, err := readDotEnv(envFile)
	if err != nil {
		return Config{}, err
	}

	getenv := src.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookup := func(key string) string {
		if v := getenv(EnvPrefix + key); v != "" {
			return v
		}
		return dotenv[EnvPrefix+key]
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// readDotEnv reads a dotenv file without touching the process environment.
// Missing files are ignored.
func readDotEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return env, nil
}

func (c *Config) applyEnv(lookup func(string) string) error {
	strs := map[string]*string{
		"TARGET":    &c.Target,
		"DIRECTORY": &c.Directory,
		"LOG_LEVEL": &c.LogLevel,
		"LISTEN":    &c.Listen,
		"LOCK_KEY":  &c.LockKey,
	}
	for key, dst := range strs {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}

	if v := lookup("METRICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sMETRICS %q: %w", EnvPrefix, v, err)
		}
		c.Metrics = b
	}
	if v := lookup("LOCK_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sLOCK_TTL %q: %w", EnvPrefix, v, err)
		}
		c.LockTTL = d
	}
	return nil
}

// Validate checks values that cannot be checked by the decoders.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LockTTL < 0 {
		return fmt.Errorf("lock_ttl must not be negative")
	}
	return nil
}
