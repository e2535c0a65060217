// Package config handles tool configuration loading and persistence.
package config

import "github.com/Faultbox/dattool/pkg/formats"

// Config holds all tool settings.
type Config struct {
	Conversion ConversionConfig `yaml:"conversion"`
	Batch      BatchConfig      `yaml:"batch"`
	Inspect    InspectConfig    `yaml:"inspect"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ConversionConfig holds the knobs applied to every converted file.
type ConversionConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	AreaID     uint16  `yaml:"area_id"`
	Width      uint16  `yaml:"width"`
	NodeType   uint8   `yaml:"node_type"`
	Flags      uint8   `yaml:"flags"`
	Backup     bool    `yaml:"backup"`
}

// Params returns the conversion constants as the codec expects them.
func (c ConversionConfig) Params() formats.ConversionParams {
	return formats.ConversionParams{
		AreaID:   c.AreaID,
		Width:    c.Width,
		NodeType: c.NodeType,
		Flags:    c.Flags,
	}
}

// BatchConfig holds batch conversion settings.
type BatchConfig struct {
	Threads int `yaml:"threads"`
}

// InspectConfig holds inspection settings.
type InspectConfig struct {
	MaxPreview int `yaml:"max_preview"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the tool's stock values. A multiplier of
// 8 matches the unit scale the game's own node files use.
func Default() *Config {
	return &Config{
		Conversion: ConversionConfig{
			Multiplier: 8.0,
			Backup:     true,
		},
		Batch: BatchConfig{
			Threads: 4,
		},
		Inspect: InspectConfig{
			MaxPreview: 200,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
