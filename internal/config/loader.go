package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/spritekit"
)

// FileName is the config file looked up in the working directory.
const FileName = ".spritekit.yaml"

// Default values for Config.
const (
	DefaultTicks      = 32
	DefaultCycleLimit = 4096
)

// DefaultAtlas returns the packing parameters the sprite editor uses.
func DefaultAtlas() Atlas {
	opts := spritekit.DefaultPackOptions()
	return Atlas{
		Padding:       opts.Padding,
		SelectPadding: opts.SelectPadding,
		Alignment:     opts.Alignment,
		AspectRatio:   opts.AspectRatio,
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Atlas: DefaultAtlas(),
		Playback: Playback{
			Ticks:      DefaultTicks,
			CycleLimit: DefaultCycleLimit,
		},
	}
}

// PackOptions converts the atlas section for spritekit.PackAtlas.
func (a Atlas) PackOptions() spritekit.PackOptions {
	return spritekit.PackOptions{
		Padding:       a.Padding,
		SelectPadding: a.SelectPadding,
		Alignment:     a.Alignment,
		AspectRatio:   a.AspectRatio,
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// LoadConfig reads .spritekit.yaml from the given base path.
// If the file doesn't exist, returns default config.
func LoadConfig(basePath string) (*Config, error) {
	cfg, err := LoadConfigFile(filepath.Join(basePath, FileName))
	if err != nil && os.IsNotExist(err) {
		def := DefaultConfig()
		return &def, nil
	}
	return cfg, err
}

// LoadConfigFile reads and parses an explicit config file. Missing fields
// keep their defaults. A missing file is returned as an fs.ErrNotExist error.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if cfg.Atlas.Padding < 0 {
		return ValidationError{Field: "atlas.padding", Message: "must not be negative"}
	}
	if cfg.Atlas.SelectPadding < 0 {
		return ValidationError{Field: "atlas.select_padding", Message: "must not be negative"}
	}
	if cfg.Atlas.Alignment <= 0 {
		return ValidationError{Field: "atlas.alignment", Message: "must be positive"}
	}
	if cfg.Atlas.AspectRatio <= 0 {
		return ValidationError{Field: "atlas.aspect_ratio", Message: "must be positive"}
	}
	if cfg.Playback.Ticks <= 0 {
		return ValidationError{Field: "playback.ticks", Message: "must be positive"}
	}
	if cfg.Playback.CycleLimit <= 0 {
		return ValidationError{Field: "playback.cycle_limit", Message: "must be positive"}
	}
	return nil
}
