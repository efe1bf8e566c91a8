package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Default(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	service := &Service{
		filePath: configPath,
		config:   getDefaultConfig(),
	}

	if err := service.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := service.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := service.Get()
	if cfg.Overlay.Width != 100 || cfg.Overlay.Height != 50 {
		t.Errorf("Default size = %dx%d; want 100x50", cfg.Overlay.Width, cfg.Overlay.Height)
	}

	if cfg.Overlay.Interval != time.Second {
		t.Errorf("Default interval = %v; want 1s", cfg.Overlay.Interval)
	}
}

func TestNew_MissingFileUsesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	service, err := New(configPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if service.Get().Overlay.FontFamily != "mono" {
		t.Errorf("Expected default font family 'mono', got %q", service.Get().Overlay.FontFamily)
	}

	// Nothing is written until Save is called
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Errorf("Config file should not be created implicitly, stat err = %v", err)
	}
}

func TestNew_PartialFileKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("overlay:\n  monitor: 1\n  text_color: \"#ff8800\"\n")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	service, err := New(configPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cfg := service.Get()
	if cfg.Overlay.Monitor != 1 {
		t.Errorf("Expected monitor 1, got %d", cfg.Overlay.Monitor)
	}
	if cfg.Overlay.TextColor != "#ff8800" {
		t.Errorf("Expected text color '#ff8800', got %q", cfg.Overlay.TextColor)
	}
	if cfg.Overlay.StrokeColor != "black" {
		t.Errorf("Expected default stroke color 'black', got %q", cfg.Overlay.StrokeColor)
	}
	if cfg.Overlay.StrokeWidth != 2 {
		t.Errorf("Expected default stroke width 2, got %d", cfg.Overlay.StrokeWidth)
	}
}

func TestNew_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("overlay:\n  width: -3\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := New(configPath); err == nil {
		t.Error("Expected error for negative width")
	}
}

func TestConfig_Save(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := getDefaultConfig()
	cfg.Display = ":1"
	cfg.Overlay.Interval = 500 * time.Millisecond

	service := &Service{
		filePath: configPath,
		config:   cfg,
	}

	if err := service.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	service2 := &Service{
		filePath: configPath,
		config:   getDefaultConfig(),
	}
	if err := service2.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	loaded := service2.Get()
	if loaded.Display != ":1" {
		t.Errorf("Expected Display ':1', got %s", loaded.Display)
	}
	if loaded.Overlay.Interval != 500*time.Millisecond {
		t.Errorf("Expected Interval 500ms, got %v", loaded.Overlay.Interval)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := getDefaultConfig()

	if cfg.Overlay.Monitor != 0 {
		t.Errorf("Expected default monitor 0, got %d", cfg.Overlay.Monitor)
	}
	if cfg.Overlay.FontSize != 20 {
		t.Errorf("Expected default font size 20, got %v", cfg.Overlay.FontSize)
	}
	if cfg.Overlay.TextColor != "green" || cfg.Overlay.StrokeColor != "black" {
		t.Errorf("Unexpected default colors %q/%q", cfg.Overlay.TextColor, cfg.Overlay.StrokeColor)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Overlay.Width = 0 }},
		{"huge height", func(c *Config) { c.Overlay.Height = 70000 }},
		{"zero font size", func(c *Config) { c.Overlay.FontSize = 0 }},
		{"negative stroke", func(c *Config) { c.Overlay.StrokeWidth = -1 }},
		{"zero interval", func(c *Config) { c.Overlay.Interval = 0 }},
		{"monitor below primary", func(c *Config) { c.Overlay.Monitor = -2 }},
	}

	for _, tc := range tests {
		cfg := getDefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
