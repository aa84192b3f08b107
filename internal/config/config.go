// Package config handles xmtool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/xmodel/pkg/xmodel"
)

// Config holds all xmtool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Codec   CodecConfig   `yaml:"codec"`
	Dump    DumpConfig    `yaml:"dump"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// CodecConfig controls which streams are accepted when reading.
type CodecConfig struct {
	MinVersion       uint32 `yaml:"min_version"`
	MaxVersion       uint32 `yaml:"max_version"`
	StrictTerminator bool   `yaml:"strict_terminator"`
}

// DecodeOptions converts the codec settings for xmodel.DecodeWithOptions.
func (c CodecConfig) DecodeOptions() xmodel.DecodeOptions {
	return xmodel.DecodeOptions{
		MinVersion:        c.MinVersion,
		MaxVersion:        c.MaxVersion,
		LenientTerminator: !c.StrictTerminator,
	}
}

// DumpConfig controls how much detail the dump command prints.
type DumpConfig struct {
	Pools     bool `yaml:"pools"`      // print pool and key values
	UserData  bool `yaml:"user_data"`  // print user data as hex
	MaxValues int  `yaml:"max_values"` // values per array before eliding, 0 = all
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Codec: CodecConfig{
			MinVersion:       xmodel.CompatibilityVersion,
			MaxVersion:       xmodel.Version,
			StrictTerminator: true,
		},
		Dump: DumpConfig{
			Pools:     false,
			UserData:  false,
			MaxValues: 16,
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.Codec.MinVersion > c.Codec.MaxVersion {
		return fmt.Errorf("codec: min_version %d above max_version %d", c.Codec.MinVersion, c.Codec.MaxVersion)
	}
	if c.Dump.MaxValues < 0 {
		return fmt.Errorf("dump: max_values %d is negative", c.Dump.MaxValues)
	}
	return nil
}
