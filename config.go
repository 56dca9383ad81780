package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"flowire/geom"
	"flowire/gesture"
)

type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Input  InputConfig  `toml:"input"`
	Export ExportConfig `toml:"export"`
	Log    LogConfig    `toml:"log"`
}

// CanvasConfig is the canvas presentation. Width and height are the pixel
// size used when no terminal size is known, for example when exporting.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Class  string  `toml:"class"`
}

type InputConfig struct {
	Platform string `toml:"platform"` // "auto", "trackpad", "mouse"
}

type ExportConfig struct {
	Directory string  `toml:"directory"`
	Scale     float64 `toml:"scale"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func defaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{Width: 1280, Height: 800, Class: "workflow"},
		Input:  InputConfig{Platform: "auto"},
		Export: ExportConfig{Scale: 1},
		Log:    LogConfig{Level: "info"},
	}
}

func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flowire")
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}

	config.Export.Directory = expandHome(config.Export.Directory)
	config.Log.File = expandHome(config.Log.File)
	if config.Export.Scale <= 0 {
		config.Export.Scale = 1
	}
	if config.Canvas.Width <= 0 || config.Canvas.Height <= 0 {
		config.Canvas.Width, config.Canvas.Height = 1280, 800
	}
	return config, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (c *Config) Platform() (gesture.Platform, error) {
	return gesture.ParsePlatform(c.Input.Platform, runtime.GOOS)
}

func (c *Config) CanvasSize() geom.Size {
	return geom.Size{W: c.Canvas.Width, H: c.Canvas.Height}
}

// GetSavePath places filename in the export directory, if one is set.
func (c *Config) GetSavePath(filename string) string {
	if c.Export.Directory == "" {
		return filename
	}
	os.MkdirAll(c.Export.Directory, 0755)
	return filepath.Join(c.Export.Directory, filename)
}
