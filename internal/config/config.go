// Package config handles sfftool configuration loading and management.
package config

import (
	"fmt"
	"runtime"

	"github.com/Faultbox/sffkit/pkg/sff"
)

// Config holds all sfftool settings.
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// DecodeConfig holds sprite decoding settings.
type DecodeConfig struct {
	Palette   int  `yaml:"palette"`    // default palette selector
	Workers   int  `yaml:"workers"`    // concurrent decodes; 0 means one per CPU
	Cache     bool `yaml:"cache"`
	MaxPixels int  `yaml:"max_pixels"` // largest sprite decoded, width*height
}

// ExportConfig holds settings for writing decoded sprites to disk.
type ExportConfig struct {
	OutputDir      string `yaml:"output_dir"`
	Format         string `yaml:"format"` // png or bmp
	SkipDuplicates bool   `yaml:"skip_duplicates"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			Palette:   0,
			Workers:   runtime.GOMAXPROCS(0),
			Cache:     true,
			MaxPixels: sff.DefaultMaxPixels,
		},
		Export: ExportConfig{
			OutputDir:      "sprites",
			Format:         "png",
			SkipDuplicates: true,
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}

// Validate reports settings sfftool cannot run with.
func (c *Config) Validate() error {
	if c.Decode.Palette < 0 {
		return fmt.Errorf("decode.palette must not be negative, got %d", c.Decode.Palette)
	}
	if c.Decode.Workers < 0 {
		return fmt.Errorf("decode.workers must not be negative, got %d", c.Decode.Workers)
	}
	if c.Decode.MaxPixels < 1 || c.Decode.MaxPixels > sff.MaxPixels {
		return fmt.Errorf("decode.max_pixels must be between 1 and %d, got %d", sff.MaxPixels, c.Decode.MaxPixels)
	}
	switch c.Export.Format {
	case "png", "bmp":
	default:
		return fmt.Errorf("export.format must be png or bmp, got %q", c.Export.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
