package config

import (
	"errors"
	"fmt"
)

// Validate checks line counts, duplicate pin assignments and tunable
// ranges. Unwired (empty) entries are allowed everywhere except the data
// bus, which must be fully populated.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: empty")
	}
	if n := len(cfg.Pins.Address); n != 12 {
		return fmt.Errorf("config: pins.address needs 12 entries, got %d", n)
	}
	if n := len(cfg.Pins.Data); n != 8 {
		return fmt.Errorf("config: pins.data needs 8 entries, got %d", n)
	}
	for i, name := range cfg.Pins.Data {
		if name == "" {
			return fmt.Errorf("config: pins.data[%d] must be wired", i)
		}
	}
	if n := len(cfg.Pins.ChipSelect); n != 2 {
		return fmt.Errorf("config: pins.chip_select needs 2 entries, got %d", n)
	}

	seen := map[string]string{}
	note := func(role, name string) error {
		if name == "" {
			return nil
		}
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("config: pin %q assigned to both %s and %s", name, prev, role)
		}
		seen[name] = role
		return nil
	}
	for i, name := range cfg.Pins.Address {
		if err := note(fmt.Sprintf("address[%d]", i), name); err != nil {
			return err
		}
	}
	for i, name := range cfg.Pins.Data {
		if err := note(fmt.Sprintf("data[%d]", i), name); err != nil {
			return err
		}
	}
	for i, name := range cfg.Pins.ChipSelect {
		if err := note(fmt.Sprintf("chip_select[%d]", i), name); err != nil {
			return err
		}
	}
	for _, line := range []struct{ role, name string }{
		{"clock", cfg.Pins.Clock},
		{"direction", cfg.Pins.Direction},
		{"output_enable", cfg.Pins.OutputEnable},
		{"probe", cfg.Pins.Probe},
	} {
		if err := note(line.role, line.name); err != nil {
			return err
		}
	}

	if cfg.Clock.Hz < 0 {
		return fmt.Errorf("config: clock.hz %d must not be negative", cfg.Clock.Hz)
	}
	if cfg.Clock.RefreshTicks < 0 {
		return fmt.Errorf("config: clock.refresh_ticks %d must not be negative", cfg.Clock.RefreshTicks)
	}
	if cfg.Keypad.DebounceMs < 0 {
		return fmt.Errorf("config: keypad.debounce_ms %d must not be negative", cfg.Keypad.DebounceMs)
	}
	return nil
}
