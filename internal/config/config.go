// Package config loads and merges stepcap configuration. A global TOML file
// lives at ~/.config/stepcap/config.toml; a project-level .stepcapconfig in
// the current working directory overrides it key by key.
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Capture controls which global input events produce a step.
type Capture struct {
	// OnClick captures a step per mouse release and keyboard shortcut.
	OnClick bool `toml:"on_click"`
	// OnHotkey captures a step when Scroll Lock is pressed.
	OnHotkey bool `toml:"on_hotkey"`
	// Display is the index of the display to capture.
	Display int `toml:"display"`
}

// Draw holds defaults for the freehand annotation pen.
type Draw struct {
	Color string `toml:"color"` // #rrggbb
	Width int    `toml:"width"` // pixels
}

// Config holds all configurable stepcap settings.
type Config struct {
	RecordingsDir string  `toml:"recordings_dir"`
	DefaultFormat string  `toml:"default_format"` // "html" | "pdf" | "json"
	OutputDir     string  `toml:"output_dir"`     // "" = session directory
	Capture       Capture `toml:"capture"`
	Draw          Draw    `toml:"draw"`
}

// Defaults returns sensible default configuration values. They mirror the
// recorder's stock behavior: capture on click, primary display, red 3px pen.
func Defaults() Config {
	return Config{
		RecordingsDir: "recordings",
		DefaultFormat: "html",
		Capture:       Capture{OnClick: true},
		Draw:          Draw{Color: "#e74c3c", Width: 3},
	}
}

// Sample returns the embedded annotated sample config.
func Sample() string { return sampleConfig }

// GlobalPath returns the global config file location.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stepcap", "config.toml"), nil
}

// ProjectFile is the per-directory override file name.
const ProjectFile = ".stepcapconfig"

// Load reads the merged configuration: defaults, then the global file, then
// the project file. TOML decoding only touches keys present in each file, so
// later layers override earlier ones key by key.
func Load() (Config, error) {
	return LoadOver(Defaults())
}

// LoadOver merges the config files over base. Callers that layer profile
// preferences under the files start from an adjusted base instead of
// Defaults.
func LoadOver(base Config) (Config, error) {
	cfg := base

	global, err := GlobalPath()
	if err != nil {
		return cfg, err
	}
	if err := applyFile(&cfg, global); err != nil {
		return cfg, err
	}
	if err := applyFile(&cfg, ProjectFile); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyFile decodes path over cfg. A missing file is not an error.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// WriteSample writes the annotated sample config to the global path, without
// overwriting an existing file.
func WriteSample() (string, error) {
	path, err := GlobalPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, os.ErrExist
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
