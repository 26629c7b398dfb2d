// Package panel wires the front-panel peripherals together: the address
// map on chip select 0, the keypad/RTC/display plumbing, and the
// cooperative main loop that services all of them strictly sequentially.
package panel // import "github.com/ebenm/frontpanel/panel"

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ebenm/frontpanel/bus"
	"github.com/ebenm/frontpanel/busclock"
	"github.com/ebenm/frontpanel/charlcd"
	"github.com/ebenm/frontpanel/keypad"
	"github.com/ebenm/frontpanel/rtc"
	"github.com/ebenm/frontpanel/segdisp"
)

// Peripheral addresses on chip select 0.
const (
	AddrLCDCommand   uint16 = 0x000
	AddrLCDData      uint16 = 0x001
	AddrKeypad       uint16 = 0x002
	AddrSegData      uint16 = 0x003 // shift-data port
	AddrSegAdvance   uint16 = 0x004 // shift-advance port
	AddrSegStrobe    uint16 = 0x005 // strobe/commit port
	AddrBacklightOn  uint16 = 0x006
	AddrBacklightOff uint16 = 0x007
)

// Identity is the static text the Status key shows.
const Identity = "FRONTPANEL V1"

// DefaultRefreshTicks is the display repaint cadence in distributed ticks.
const DefaultRefreshTicks = 1

// DefaultPollInterval paces the cooperative main loop when driven by Run.
const DefaultPollInterval = 2 * time.Millisecond

// BusPort issues cycles against the front panel's chip select. *Port is the
// hardware implementation; tests substitute fakes.
type BusPort interface {
	Write(addr uint16, value uint8) error
	Read(addr uint16) (uint8, error)
}

// Port binds a Bus to chip select 0, where every front-panel peripheral
// lives.
type Port struct {
	Bus *bus.Bus
}

func (p Port) Write(addr uint16, value uint8) error {
	return p.Bus.WriteCycle(bus.Select0, addr, value)
}

func (p Port) Read(addr uint16) (uint8, error) {
	return p.Bus.ReadCycle(bus.Select0, addr)
}

// Panel is the front panel core. Build one with New. The cooperative loop
// owns all panel state; the exported mutators and Snapshot serialize
// against it with an internal lock so the diagnostic console can share the
// panel from another goroutine.
type Panel struct {
	port     BusPort
	lcd      *charlcd.Display
	seg      *segdisp.Display
	gen      *busclock.Generator
	debounce keypad.Debouncer
	entry    keypad.Entry

	mu           sync.Mutex
	clock        rtc.Clock
	refreshTicks uint32
	poll         time.Duration
	colon        bool
}

// Config carries the tunables New needs beyond the wired port.
type Config struct {
	// Generator distributes ticks to the panel. Required.
	Generator *busclock.Generator
	// RefreshTicks is the repaint cadence; zero means DefaultRefreshTicks.
	RefreshTicks int
	// Debounce overrides keypad.DefaultInterval when non-zero.
	Debounce time.Duration
	// PollInterval paces Run; zero means DefaultPollInterval.
	PollInterval time.Duration
}

// New assembles a panel on port. The character display is not initialized
// until Start runs.
func New(port BusPort, cfg Config) *Panel {
	p := &Panel{
		port: port,
		lcd:  &charlcd.Display{Bus: port, CommandAddr: AddrLCDCommand, DataAddr: AddrLCDData},
		seg: &segdisp.Display{
			Bus:         port,
			DataAddr:    AddrSegData,
			AdvanceAddr: AddrSegAdvance,
			StrobeAddr:  AddrSegStrobe,
		},
		gen:          cfg.Generator,
		refreshTicks: uint32(cfg.RefreshTicks),
		poll:         cfg.PollInterval,
	}
	if p.refreshTicks == 0 {
		p.refreshTicks = DefaultRefreshTicks
	}
	if p.poll == 0 {
		p.poll = DefaultPollInterval
	}
	p.debounce.Interval = cfg.Debounce
	p.entry.Actions = loopActions{p}
	return p
}

// Start brings up the character display and paints the initial clock.
func (p *Panel) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.lcd.Init(); err != nil {
		return err
	}
	return p.refresh()
}

// Step runs one pass of the cooperative loop: poll and debounce the keypad,
// draw at most one second from the bus tick backlog into the RTC, and
// repaint the clock display once enough display ticks accumulated. Backlog
// beyond one RTC step per pass is deliberately dropped, never replayed.
func (p *Panel) Step() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	raw, err := p.port.Read(AddrKeypad)
	if err != nil {
		return err
	}
	if tok, ok := p.debounce.Observe(raw); ok {
		if err := p.entry.Handle(tok); err != nil {
			return err
		}
	}
	if p.gen.Bus.TakeOne() {
		p.clock.Step()
	}
	if p.gen.Display.TakePast(p.refreshTicks) {
		p.colon = !p.colon
		if err := p.paintClock(); err != nil {
			return err
		}
	}
	return nil
}

// Run drives Step until ctx is done. Step errors are reported and the loop
// keeps going; nothing here is fatal.
func (p *Panel) Run(ctx context.Context) {
	t := time.NewTicker(p.poll)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := p.Step(); err != nil {
				log.Printf("panel: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *Panel) paintClock() error {
	p.seg.ComposeClock(p.colon, p.clock.Days, p.clock.Hours, p.clock.Minutes, p.clock.Seconds)
	return p.seg.Transmit()
}

// InjectSegments pushes raw slice values straight to the segment display,
// for the diagnostic console.
func (p *Panel) InjectSegments(values []uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seg.Load(values)
	return p.seg.Transmit()
}

// Status is a snapshot of panel internals for the diagnostic console.
type Status struct {
	Clock        string
	BusTicks     uint32
	DisplayTicks uint32
	KeypadCode   uint8
}

// Snapshot reads the current status without consuming any ticks.
func (p *Panel) Snapshot() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Clock:        p.clock.String(),
		BusTicks:     p.gen.Bus.Load(),
		DisplayTicks: p.gen.Display.Load(),
		KeypadCode:   p.debounce.LastRaw(),
	}
}
