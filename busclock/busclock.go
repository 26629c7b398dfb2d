// Package busclock generates the free-running bus clock and distributes
// elapsed time to the main loop. A periodic firing source toggles the clock
// line; every Hz firings it produces one tick on each of two independent
// counters, one consumed by the real-time-clock stepper and one by the
// display refresh scheduler. Consumers poll; nothing is pushed.
package busclock

import (
	"context"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// DefaultHz is the reference firing rate: 50 kHz firings produce a 25 kHz
// square wave on the clock line and one distributed tick per second.
const DefaultHz = 50000

// Counter accumulates ticks written from the firing context and drained
// from the main loop. All access is through atomic take-and-clear style
// operations; the raw count is never shared.
type Counter struct {
	n atomic.Uint32
}

// Add credits ticks. Called only from the firing context.
func (c *Counter) Add(n uint32) {
	c.n.Add(n)
}

// Load returns the current backlog without consuming it.
func (c *Counter) Load() uint32 {
	return c.n.Load()
}

// TakeOne consumes a single tick, reporting whether one was available.
func (c *Counter) TakeOne() bool {
	for {
		v := c.n.Load()
		if v == 0 {
			return false
		}
		if c.n.CompareAndSwap(v, v-1) {
			return true
		}
	}
}

// TakePast clears the counter and reports true once the backlog exceeds
// limit. The clear is a single atomic swap, so a tick arriving between the
// check and the clear is consumed, never duplicated.
func (c *Counter) TakePast(limit uint32) bool {
	if c.n.Load() <= limit {
		return false
	}
	c.n.Swap(0)
	return true
}

// Generator is the firing source state. Fire is the only writer of the
// counters; everything else only drains them.
type Generator struct {
	// CLK is the bus clock line, toggled on every firing. Optional.
	CLK gpio.PinIO

	// Hz is the firing rate. It doubles as the sub-count per distributed
	// tick, so ticks arrive at 1 Hz regardless of the selected rate.
	// Zero means DefaultHz.
	Hz uint32

	// Bus and Display receive one tick each per Hz firings.
	Bus     Counter
	Display Counter

	phase bool
	sub   uint32
}

// Fire advances the generator by one timer firing: the clock line toggles
// and, every Hz firings, both counters gain a tick.
func (g *Generator) Fire() {
	if g.CLK != nil {
		g.phase = !g.phase
		g.CLK.Out(gpio.Level(g.phase))
	}
	g.sub++
	if g.sub >= g.hz() {
		g.sub = 0
		g.Bus.Add(1)
		g.Display.Add(1)
	}
}

// Run drives Fire from a periodic ticker until ctx is done. It stands in
// for the hardware timer interrupt of the bench setup, and is only
// accurate at modest rates: past a few kHz the ticker coalesces firings on
// a stock kernel and the distributed ticks run slow. The tick accounting
// in Fire is exact regardless of what drives it.
func (g *Generator) Run(ctx context.Context) {
	t := time.NewTicker(time.Second / time.Duration(g.hz()))
	defer t.Stop()
	for {
		select {
		case <-t.C:
			g.Fire()
		case <-ctx.Done():
			return
		}
	}
}

func (g *Generator) hz() uint32 {
	if g.Hz == 0 {
		return DefaultHz
	}
	return g.Hz
}
