// Package config loads gobcf settings from a YAML or TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/philipparndt/gobcf/internal/logging"
	"github.com/philipparndt/gobcf/pkg/clipping"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

// ErrUnknownFormat is returned for config files that are neither YAML nor TOML
var ErrUnknownFormat = errors.New("unknown config format")

// EnvPrefix prefixes every environment override
const EnvPrefix = "GOBCF_"

// Config holds all settings
type Config struct {
	AngleThreshold float64 `yaml:"angle_threshold_rad" toml:"angle_threshold_rad"`
	// InvertDirection negates camera directions on the way in and out. Hosts
	// whose views look along the negated BCF direction need it. The bundled
	// memory host stores the BCF direction as its forward vector, so it is off
	// by default.
	InvertDirection    bool    `yaml:"invert_direction" toml:"invert_direction"`
	HostUnit           string  `yaml:"host_unit" toml:"host_unit"`
	DefaultFieldOfView float64 `yaml:"default_field_of_view" toml:"default_field_of_view"`
	// HistoryPath is the sqlite file; empty disables the history
	HistoryPath string `yaml:"history_path" toml:"history_path"`
	LogLevel    string `yaml:"log_level" toml:"log_level"`

	Bridge Bridge `yaml:"bridge" toml:"bridge"`
	Inbox  Inbox  `yaml:"inbox" toml:"inbox"`
}

// Bridge configures the HTTP bridge
type Bridge struct {
	Addr          string        `yaml:"addr" toml:"addr"`
	ReadTimeout   time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	ExportTimeout time.Duration `yaml:"export_timeout" toml:"export_timeout"`
}

// Inbox configures the watched viewpoint directory. An empty Dir disables it.
type Inbox struct {
	Dir      string        `yaml:"dir" toml:"dir"`
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Default returns the built-in settings. They suit the bundled memory host,
// which shares the camera convention of BCF and needs no direction inversion.
func Default() *Config {
	return &Config{
		AngleThreshold:     clipping.DefaultAngleThreshold,
		HostUnit:           "feet",
		DefaultFieldOfView: 60,
		HistoryPath:        "data/history.db",
		LogLevel:           "info",
		Bridge: Bridge{
			Addr:          ":8765",
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  10 * time.Second,
			ExportTimeout: 5 * time.Second,
		},
		Inbox: Inbox{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// Load reads path on top of the defaults, then applies environment overrides.
// An empty or missing path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Logger().Debug("config file not found, using defaults", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		_, err = toml.Decode(string(data), c)
	default:
		return fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if !(c.AngleThreshold > 0 && c.AngleThreshold <= math.Pi/4) {
		return fmt.Errorf("angle_threshold_rad must be in (0, π/4], got %v", c.AngleThreshold)
	}
	if _, err := c.Unit(); err != nil {
		return err
	}
	if c.DefaultFieldOfView <= 0 || c.DefaultFieldOfView >= 180 {
		return fmt.Errorf("default_field_of_view must be in (0, 180), got %v", c.DefaultFieldOfView)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Unit resolves the configured host unit
func (c *Config) Unit() (geometry.Unit, error) {
	return geometry.ParseUnit(c.HostUnit)
}
