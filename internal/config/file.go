package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML configuration file on top of the defaults, then
// applies environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return applyEnv(cfg), nil
}

// applyDefaults restores values a file zeroed out explicitly.
func (c *Config) applyDefaults() {
	def := Defaults()
	if c.HTTPAddr == "" {
		c.HTTPAddr = def.HTTPAddr
	}
	if len(c.Origins) == 0 {
		c.Origins = def.Origins
	}
	if c.Camera.Backend == "" {
		c.Camera.Backend = def.Camera.Backend
	}
	if c.Camera.Device == "" {
		c.Camera.Device = def.Camera.Device
	}
	if c.Camera.FacingMode == "" {
		c.Camera.FacingMode = def.Camera.FacingMode
	}
	if c.Camera.JPEGQuality <= 0 {
		c.Camera.JPEGQuality = def.Camera.JPEGQuality
	}
	if c.Preview.Rate <= 0 {
		c.Preview.Rate = def.Preview.Rate
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}
