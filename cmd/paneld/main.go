// Command paneld runs the front panel: it wires the bus to the configured
// GPIO pins, starts the clock generator and the cooperative main loop, and
// serves the diagnostic console on stdin/stdout.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/ebenm/frontpanel/bus"
	"github.com/ebenm/frontpanel/busclock"
	"github.com/ebenm/frontpanel/console"
	"github.com/ebenm/frontpanel/internal/config"
	"github.com/ebenm/frontpanel/panel"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: paneld <config.yaml>")
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	if _, err := host.Init(); err != nil {
		log.Fatalf("host init failed: %v", err)
	}

	b, err := buildBus(cfg)
	if err != nil {
		log.Fatalf("bus wiring failed: %v", err)
	}
	if err := b.ConfigureAddressBus(); err != nil {
		log.Fatalf("address bus setup failed: %v", err)
	}
	if err := b.ConfigureControlLines(); err != nil {
		log.Fatalf("control line setup failed: %v", err)
	}

	gen := &busclock.Generator{
		CLK: b.CLK,
		Hz:  uint32(cfg.Clock.Hz),
	}

	p := panel.New(panel.Port{Bus: b}, panel.Config{
		Generator:    gen,
		RefreshTicks: cfg.Clock.RefreshTicks,
		Debounce:     time.Duration(cfg.Keypad.DebounceMs) * time.Millisecond,
	})
	if err := p.Start(); err != nil {
		log.Fatalf("panel bring-up failed: %v", err)
	}

	ctx := context.Background()
	go gen.Run(ctx)
	go p.Run(ctx)

	c := &console.Console{Bus: b, Panel: p}
	if err := c.Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("console: %v", err)
	}
}

// buildBus resolves the configured pin names. Empty names stay nil and the
// bus skips those lines.
func buildBus(cfg *config.Config) (*bus.Bus, error) {
	b := &bus.Bus{}
	var err error
	for i, name := range cfg.Pins.Address {
		if b.Addr[i], err = lookup(name); err != nil {
			return nil, err
		}
	}
	for i, name := range cfg.Pins.Data {
		if b.Data[i], err = lookup(name); err != nil {
			return nil, err
		}
	}
	for i, name := range cfg.Pins.ChipSelect {
		if b.CS[i], err = lookup(name); err != nil {
			return nil, err
		}
	}
	if b.CLK, err = lookup(cfg.Pins.Clock); err != nil {
		return nil, err
	}
	if b.RW, err = lookup(cfg.Pins.Direction); err != nil {
		return nil, err
	}
	if b.OE, err = lookup(cfg.Pins.OutputEnable); err != nil {
		return nil, err
	}
	if b.Probe, err = lookup(cfg.Pins.Probe); err != nil {
		return nil, err
	}
	return b, nil
}

func lookup(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, nil
	}
	if p := gpioreg.ByName(name); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("no GPIO pin named %q", name)
}
