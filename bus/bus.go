// Package bus drives a shared parallel peripheral bus (using periph.io): 12
// address lines, 8 data lines, two active-low chip selects, an active-low
// output enable, a read/write direction line and a free-running clock line.
// One Bus owns the physical lines; every transaction is an atomic read or
// write cycle with chip-select exclusivity enforced by the engine.
package bus // import "github.com/ebenm/frontpanel/bus"

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Select identifies a chip-select line.
type Select int

const (
	// SelectNone deasserts every chip select.
	SelectNone Select = -1
	Select0    Select = 0
	Select1    Select = 1
)

// Direction is the data bus transfer direction for one cycle.
type Direction int

const (
	Write Direction = iota
	Read
)

// DefaultSettle is the minimum delay between address/direction setup and the
// data transfer within a cycle. The peripheral's decode logic needs the
// address and direction stable before data is driven or sampled.
const DefaultSettle = 2 * time.Microsecond

// AddressLines is the width of the address bus.
const AddressLines = 12

// Bus is the transaction engine. Pins are assigned by the caller before the
// Configure methods run; a nil pin means that line is not wired and is
// skipped by every operation.
type Bus struct {
	Addr  [AddressLines]gpio.PinIO // address bits 0 - 11
	Data  [8]gpio.PinIO            // data bits 0 - 7
	CS    [2]gpio.PinIO            // chip selects, active low
	CLK   gpio.PinIO               // bus clock, toggled by the clock generator
	RW    gpio.PinIO               // direction: low = write, high = read
	OE    gpio.PinIO               // output enable, active low
	Probe gpio.PinIO               // probe input, active low

	// Settle overrides DefaultSettle when non-zero. Exposed so tests can
	// collapse the busy-delay without touching protocol logic.
	Settle time.Duration

	// mu serializes cycles and chip-select changes, so the diagnostic
	// console and the panel loop can share one Bus. The physical bus only
	// ever carries one transaction at a time either way.
	mu       sync.Mutex
	asserted int8 // 0 = none, 1 = CS0, 2 = CS1
}

// ConfigureAddressBus drives every wired address line low.
func (b *Bus) ConfigureAddressBus() error {
	for i, p := range b.Addr {
		if p == nil {
			continue
		}
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("bus: address line %d: %w", i, err)
		}
	}
	return nil
}

// ConfigureDataBus switches the data lines to outputs (driven low) or
// inputs, depending on the cycle direction.
func (b *Bus) ConfigureDataBus(dir Direction) error {
	for i, p := range b.Data {
		if p == nil {
			continue
		}
		var err error
		if dir == Read {
			err = p.In(gpio.PullNoChange, gpio.NoEdge)
		} else {
			err = p.Out(gpio.Low)
		}
		if err != nil {
			return fmt.Errorf("bus: data line %d: %w", i, err)
		}
	}
	return nil
}

// ConfigureControlLines parks every control line in its deasserted state and
// arms the probe input. Must run once before the first cycle.
func (b *Bus) ConfigureControlLines() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.CS {
		if p == nil {
			continue
		}
		if err := p.Out(gpio.High); err != nil {
			return fmt.Errorf("bus: chip select %d: %w", i, err)
		}
	}
	b.asserted = 0
	if b.OE != nil {
		if err := b.OE.Out(gpio.High); err != nil {
			return fmt.Errorf("bus: output enable: %w", err)
		}
	}
	if b.RW != nil {
		if err := b.RW.Out(gpio.High); err != nil {
			return fmt.Errorf("bus: direction: %w", err)
		}
	}
	if b.CLK != nil {
		if err := b.CLK.Out(gpio.Low); err != nil {
			return fmt.Errorf("bus: clock: %w", err)
		}
	}
	if b.Probe != nil {
		if err := b.Probe.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return fmt.Errorf("bus: probe: %w", err)
		}
	}
	return nil
}

// SetAddress drives the low 12 bits of addr onto the address lines, bit 0 on
// line 0.
func (b *Bus) SetAddress(addr uint16) error {
	for i, p := range b.Addr {
		if p == nil {
			continue
		}
		if err := p.Out(gpio.Level(addr&(1<<i) != 0)); err != nil {
			return fmt.Errorf("bus: address line %d: %w", i, err)
		}
	}
	return nil
}

// SetChipSelect asserts or deasserts one chip select. Asserting a select
// first deasserts every other one, and the output enable is driven only
// while a select is asserted; at most one select line is ever low.
// SetChipSelect(SelectNone, _) deasserts everything.
func (b *Bus) SetChipSelect(sel Select, assert bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setChipSelect(sel, assert)
}

func (b *Bus) setChipSelect(sel Select, assert bool) error {
	switch sel {
	case SelectNone:
		return b.deassertAll()
	case Select0, Select1:
	default:
		return fmt.Errorf("bus: chip select %d not present in hardware map", sel)
	}
	if !assert {
		return b.deassertAll()
	}
	if b.asserted != int8(sel)+1 {
		// Release the previous select (and output enable) before the new
		// one goes low, so at most one select line is ever asserted.
		if err := b.deassertAll(); err != nil {
			return err
		}
	}
	if p := b.CS[sel]; p != nil {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("bus: chip select %d: %w", sel, err)
		}
	}
	b.asserted = int8(sel) + 1
	if b.OE != nil {
		if err := b.OE.Out(gpio.Low); err != nil {
			return fmt.Errorf("bus: output enable: %w", err)
		}
	}
	return nil
}

func (b *Bus) deassertAll() error {
	// OE first so the peripheral stops driving before deselection.
	if b.OE != nil {
		if err := b.OE.Out(gpio.High); err != nil {
			return fmt.Errorf("bus: output enable: %w", err)
		}
	}
	for i, p := range b.CS {
		if p == nil {
			continue
		}
		if err := p.Out(gpio.High); err != nil {
			return fmt.Errorf("bus: chip select %d: %w", i, err)
		}
	}
	b.asserted = 0
	return nil
}

// WriteCycle performs one atomic write of value to addr on the peripheral
// behind sel. The data bus is left in a safe state (input, pulled low)
// afterwards.
func (b *Bus) WriteCycle(sel Select, addr uint16, value uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(sel, Write, addr); err != nil {
		return err
	}
	b.settleWait() // address and direction must be stable before data
	for i, p := range b.Data {
		if p == nil {
			continue
		}
		if err := p.Out(gpio.Level(value&(1<<i) != 0)); err != nil {
			return fmt.Errorf("bus: data line %d: %w", i, err)
		}
	}
	if err := b.deassertAll(); err != nil {
		return err
	}
	return b.parkDataBus()
}

// ReadCycle performs one atomic read from addr on the peripheral behind sel.
// Data line 0 becomes the least significant bit of the result. Like
// WriteCycle, it leaves the data bus parked as a pulled-low input.
func (b *Bus) ReadCycle(sel Select, addr uint16) (uint8, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(sel, Read, addr); err != nil {
		return 0, err
	}
	b.settleWait()
	var value uint8
	for i, p := range b.Data {
		if p == nil {
			continue
		}
		if p.Read() {
			value |= 1 << i
		}
	}
	if err := b.deassertAll(); err != nil {
		return 0, err
	}
	return value, b.parkDataBus()
}

// ProbeCycle asserts sel at addr and samples the probe input. True means the
// line responded (probe is active low). Used by address sweeps.
func (b *Bus) ProbeCycle(sel Select, addr uint16) (bool, error) {
	if b.Probe == nil {
		return false, fmt.Errorf("bus: probe line not wired")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.begin(sel, Read, addr); err != nil {
		return false, err
	}
	b.settleWait()
	hit := b.Probe.Read() == gpio.Low
	return hit, b.deassertAll()
}

// Sweep probes every address on sel and returns the ones where the probe
// line responded. Diagnostic use only; not part of the steady-state path.
func (b *Bus) Sweep(sel Select) ([]uint16, error) {
	var hits []uint16
	for addr := uint16(0); addr < 1<<AddressLines; addr++ {
		hit, err := b.ProbeCycle(sel, addr)
		if err != nil {
			return hits, err
		}
		if hit {
			hits = append(hits, addr)
		}
	}
	return hits, nil
}

// begin sets up the shared first half of a cycle: data bus direction,
// address, direction line, chip select. A still-asserted select from an
// interrupted cycle is forcibly deasserted first rather than trusting the
// caller.
func (b *Bus) begin(sel Select, dir Direction, addr uint16) error {
	if sel != Select0 && sel != Select1 {
		return fmt.Errorf("bus: cycle needs a chip select, got %d", sel)
	}
	if b.asserted != 0 {
		if err := b.deassertAll(); err != nil {
			return err
		}
	}
	if err := b.ConfigureDataBus(dir); err != nil {
		return err
	}
	if err := b.SetAddress(addr); err != nil {
		return err
	}
	if err := b.setChipSelect(sel, true); err != nil {
		return err
	}
	if b.RW != nil {
		// Low = write, high = read.
		if err := b.RW.Out(gpio.Level(dir == Read)); err != nil {
			return fmt.Errorf("bus: direction: %w", err)
		}
	}
	return nil
}

// parkDataBus returns the data lines to inputs pulled low, electrically safe
// between cycles.
func (b *Bus) parkDataBus() error {
	for i, p := range b.Data {
		if p == nil {
			continue
		}
		if err := p.In(gpio.PullDown, gpio.NoEdge); err != nil {
			return fmt.Errorf("bus: data line %d: %w", i, err)
		}
	}
	return nil
}

func (b *Bus) settleWait() {
	d := b.Settle
	if d == 0 {
		d = DefaultSettle
	}
	time.Sleep(d)
}
