package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// X display to connect to; empty means $DISPLAY
	Display string `yaml:"display"`

	// Overlay settings
	Overlay OverlayConfig `yaml:"overlay"`

	// Logging settings
	Log LogConfig `yaml:"log"`
}

// OverlayConfig holds overlay window settings
type OverlayConfig struct {
	Monitor     int           `yaml:"monitor"` // RandR output index, -1 selects the primary output
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	FontFamily  string        `yaml:"font_family"`
	FontPath    string        `yaml:"font_path"` // Optional explicit font file, tried before the family
	FontSize    float64       `yaml:"font_size"`
	TextColor   string        `yaml:"text_color"`
	StrokeColor string        `yaml:"stroke_color"`
	StrokeWidth int           `yaml:"stroke_width"`
	Interval    time.Duration `yaml:"interval"`
	CacheSize   int           `yaml:"cache_size"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// Service manages configuration persistence
type Service struct {
	config   *Config
	filePath string
}

// New creates a config service backed by path. An empty path selects
// ~/.clock-overlay/config.yaml. A missing file is not an error: the
// defaults are used and nothing is written.
func New(path string) (*Service, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	service := &Service{
		filePath: path,
		config:   getDefaultConfig(),
	}

	if _, err := os.Stat(path); err == nil {
		if err := service.Load(); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	return service, nil
}

// DefaultPath returns the location of the config file in the user's home.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".clock-overlay", "config.yaml"), nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Overlay: OverlayConfig{
			Monitor:     0,
			Width:       100,
			Height:      50,
			FontFamily:  "mono",
			FontSize:    20,
			TextColor:   "green",
			StrokeColor: "black",
			StrokeWidth: 2,
			Interval:    time.Second,
			CacheSize:   4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Get returns the current configuration
func (s *Service) Get() *Config {
	return s.config
}

// Load loads configuration from file. Fields absent from the file keep
// their current values.
func (s *Service) Load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, s.config); err != nil {
		return err
	}
	return s.config.Validate()
}

// Save saves configuration to file, creating its directory if needed.
func (s *Service) Save() error {
	data, err := yaml.Marshal(s.config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(s.filePath, data, 0644)
}

// Path returns the full path to the configuration file
func (s *Service) Path() string {
	return s.filePath
}

// Validate reports settings the overlay cannot run with.
func (c *Config) Validate() error {
	o := c.Overlay
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("invalid overlay size %dx%d", o.Width, o.Height)
	case o.Width > 0xffff || o.Height > 0xffff:
		return fmt.Errorf("overlay size %dx%d exceeds protocol limits", o.Width, o.Height)
	case o.FontSize <= 0:
		return fmt.Errorf("invalid font size %v", o.FontSize)
	case o.StrokeWidth < 0:
		return fmt.Errorf("invalid stroke width %d", o.StrokeWidth)
	case o.Interval <= 0:
		return fmt.Errorf("invalid tick interval %v", o.Interval)
	case o.Monitor < -1:
		return fmt.Errorf("invalid monitor index %d", o.Monitor)
	}
	return nil
}
