// Package config loads the panel daemon's YAML configuration: the GPIO pin
// map for the bus lines plus clock and keypad tunables.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Pins   PinsConfig   `yaml:"pins"`
	Clock  ClockConfig  `yaml:"clock"`
	Keypad KeypadConfig `yaml:"keypad"`
}

// PinsConfig names the GPIO pins for each bus role, in gpioreg terms. An
// empty name means the line is not wired.
type PinsConfig struct {
	Address      []string `yaml:"address"`       // 12 entries, bit 0 first
	Data         []string `yaml:"data"`          // 8 entries, bit 0 first
	ChipSelect   []string `yaml:"chip_select"`   // 2 entries
	Clock        string   `yaml:"clock"`
	Direction    string   `yaml:"direction"`
	OutputEnable string   `yaml:"output_enable"`
	Probe        string   `yaml:"probe"`
}

type ClockConfig struct {
	// Hz is the firing rate of the clock generator.
	Hz int `yaml:"hz"`
	// RefreshTicks is the display repaint cadence in distributed ticks.
	RefreshTicks int `yaml:"refresh_ticks"`
}

type KeypadConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// Load reads and decodes a config file. Validate separately.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
