package busclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestFireTickAccounting(t *testing.T) {
	for _, tc := range []struct {
		fires uint32
		hz    uint32
		want  uint32
	}{
		{fires: 0, hz: 5, want: 0},
		{fires: 4, hz: 5, want: 0},
		{fires: 5, hz: 5, want: 1},
		{fires: 9, hz: 5, want: 1},
		{fires: 50, hz: 5, want: 10},
		{fires: 51, hz: 5, want: 10},
		{fires: 3, hz: 1, want: 3},
	} {
		g := &Generator{Hz: tc.hz}
		for i := uint32(0); i < tc.fires; i++ {
			g.Fire()
		}
		assert.Equal(t, tc.want, g.Bus.Load(), "bus ticks after %d firings at hz=%d", tc.fires, tc.hz)
		assert.Equal(t, tc.want, g.Display.Load(), "display ticks after %d firings at hz=%d", tc.fires, tc.hz)
	}
}

func TestFireTogglesClockLine(t *testing.T) {
	p := &gpiotest.Pin{N: "CLK"}
	g := &Generator{CLK: p, Hz: 10}
	g.Fire()
	assert.Equal(t, gpio.High, p.Read())
	g.Fire()
	assert.Equal(t, gpio.Low, p.Read())
	g.Fire()
	assert.Equal(t, gpio.High, p.Read())
}

func TestCounterTakeOne(t *testing.T) {
	var c Counter
	assert.False(t, c.TakeOne())
	c.Add(2)
	assert.True(t, c.TakeOne())
	assert.True(t, c.TakeOne())
	assert.False(t, c.TakeOne())
	assert.Equal(t, uint32(0), c.Load())
}

func TestCounterTakePast(t *testing.T) {
	var c Counter
	c.Add(3)
	assert.False(t, c.TakePast(3), "threshold must be exceeded, not met")
	assert.True(t, c.TakePast(2))
	assert.Equal(t, uint32(0), c.Load(), "TakePast clears the backlog")
	assert.False(t, c.TakePast(0))
}
