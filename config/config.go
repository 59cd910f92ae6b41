// Package config loads game settings from YAML. The embedded default.yaml
// is read first and an optional file on disk is laid over it.
package config

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Levels    LevelsConfig    `yaml:"levels"`
	Player    PlayerConfig    `yaml:"player"`
	Inspector InspectorConfig `yaml:"inspector"`
	Debug     bool            `yaml:"debug"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type LevelsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
	// Start names a level to load immediately, skipping the main menu.
	Start string `yaml:"start"`
}

type PlayerConfig struct {
	Torque     float32 `yaml:"torque"`
	MouseSpeed float32 `yaml:"mouse_speed"`
}

type InspectorConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the embedded configuration.
func Default() (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal default.yaml: %w", err)
	}
	return cfg, nil
}

// Load reads path over the defaults. A missing file is not an error when
// optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Player.Torque <= 0 {
		return fmt.Errorf("player torque %v must be positive", c.Player.Torque)
	}
	if c.Player.MouseSpeed <= 0 {
		return fmt.Errorf("player mouse_speed %v must be positive", c.Player.MouseSpeed)
	}
	return nil
}

// Flags holds command line overrides. Only flags the user actually set
// replace config values.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath string
	debug      bool
	levelsDir  string
	level      string
	inspect    string
	noWatch    bool
}

// RegisterFlags declares the overrides on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", "spherefall.yaml", "path to a YAML config file laid over the defaults")
	fs.BoolVar(&f.debug, "debug", false, "enable debug mode")
	fs.StringVar(&f.levelsDir, "levels", "", "directory to read level files from before the embedded ones")
	fs.StringVar(&f.level, "level", "", "level name to load at start (basename, .level.kdl optional)")
	fs.StringVar(&f.inspect, "inspect", "", "serve the inspector websocket feed on this address, e.g. :8099")
	fs.BoolVar(&f.noWatch, "nowatch", false, "disable hot reload of level files")
	return f
}

// Apply copies every flag set on the command line into cfg.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			cfg.Debug = f.debug
		case "levels":
			cfg.Levels.Dir = f.levelsDir
		case "level":
			cfg.Levels.Start = f.level
		case "inspect":
			cfg.Inspector.Addr = f.inspect
		case "nowatch":
			cfg.Levels.Watch = !f.noWatch
		}
	})
}

// ConfigPathSet reports whether -config was given explicitly.
func (f *Flags) ConfigPathSet() bool {
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "config" {
			set = true
		}
	})
	return set
}
