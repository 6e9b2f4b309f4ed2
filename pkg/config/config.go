// Package config loads datamodel.yaml (or .json), the workspace settings file.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/datamodel/internal/logging"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "datamodel.yaml"

// Store backends.
const (
	StoreLoam   = "loam"
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Redis configures the redis store and locker.
type Redis struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// Palette configures color extraction.
type Palette struct {
	// Cut is the fraction of pixels a color needs to count as valid.
	Cut float64 `yaml:"cut" json:"cut"`
}

// Config is the content of datamodel.yaml.
type Config struct {
	Store         string   `yaml:"store" json:"store"`
	Dir           string   `yaml:"dir" json:"dir"`
	Redis         Redis    `yaml:"redis" json:"redis"`
	Palette       Palette  `yaml:"palette" json:"palette"`
	LogLevel      string   `yaml:"log_level" json:"log_level"`
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
	Redact        []string `yaml:"redact" json:"redact"`
	Listen        string   `yaml:"listen" json:"listen"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		Store:    StoreLoam,
		Dir:      ".",
		Redis:    Redis{Addr: "localhost:6379", Prefix: "datamodel:"},
		Palette:  Palette{Cut: 0.015},
		LogLevel: "info",
		Listen:   ":8080",
	}
}

// Load reads path over the defaults. A missing file yields the defaults; YAML is assumed
// unless the extension is .json.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be used as given.
func (c Config) Validate() error {
	switch c.Store {
	case StoreLoam, StoreFile, StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want loam, file, memory or redis)", c.Store)
	}
	if c.Palette.Cut < 0 || c.Palette.Cut > 1 {
		return fmt.Errorf("palette cut %v is outside [0, 1]", c.Palette.Cut)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, p := range c.Redact {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("redact pattern %q: %w", p, err)
		}
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() slog.Level {
	l, _ := logging.ParseLevel(c.LogLevel)
	return l
}
