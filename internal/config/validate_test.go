package config

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := &Config{}
	for i := 0; i < 12; i++ {
		cfg.Pins.Address = append(cfg.Pins.Address, "A"+strconv.Itoa(i))
	}
	for i := 0; i < 8; i++ {
		cfg.Pins.Data = append(cfg.Pins.Data, "D"+strconv.Itoa(i))
	}
	cfg.Pins.ChipSelect = []string{"CS0", "CS1"}
	cfg.Pins.Clock = "CLK"
	cfg.Pins.Direction = "RW"
	cfg.Pins.OutputEnable = "OE"
	cfg.Pins.Probe = "PRB"
	cfg.Clock.Hz = 1000
	cfg.Clock.RefreshTicks = 1
	cfg.Keypad.DebounceMs = 100
	return cfg
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateUnwiredOptionalLines(t *testing.T) {
	cfg := validConfig()
	cfg.Pins.Address[11] = ""
	cfg.Pins.Probe = ""
	cfg.Pins.ChipSelect[1] = ""
	assert.NoError(t, Validate(cfg))
}

func TestValidateCounts(t *testing.T) {
	cfg := validConfig()
	cfg.Pins.Address = cfg.Pins.Address[:11]
	assert.Error(t, Validate(cfg))

	cfg = validConfig()
	cfg.Pins.Data = append(cfg.Pins.Data, "D8")
	assert.Error(t, Validate(cfg))

	cfg = validConfig()
	cfg.Pins.ChipSelect = []string{"CS0"}
	assert.Error(t, Validate(cfg))
}

func TestValidateDataMustBeWired(t *testing.T) {
	cfg := validConfig()
	cfg.Pins.Data[3] = ""
	assert.Error(t, Validate(cfg))
}

func TestValidateDuplicatePin(t *testing.T) {
	cfg := validConfig()
	cfg.Pins.Probe = "A0"
	err := Validate(cfg)
	assert.ErrorContains(t, err, "A0")
}

func TestValidateRanges(t *testing.T) {
	cfg := validConfig()
	cfg.Clock.Hz = -1
	assert.Error(t, Validate(cfg))

	cfg = validConfig()
	cfg.Keypad.DebounceMs = -5
	assert.Error(t, Validate(cfg))
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, Validate(nil))
}
