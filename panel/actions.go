package panel

// loopActions lets the entry machine drive the panel without taking the
// panel lock: tokens only ever dispatch from inside Step, which already
// holds it. Console-facing mutators live on Panel itself and do lock.
type loopActions struct {
	p *Panel
}

func (a loopActions) SetBacklight(on bool) error { return a.p.setBacklight(on) }

func (a loopActions) SetTime(hours, minutes int) error { return a.p.clock.SetTime(hours, minutes) }

func (a loopActions) SetDay(days int) error { return a.p.clock.SetDay(days) }

func (a loopActions) SetRefreshRate(ticks int) error { return a.p.setRefreshRate(ticks) }

func (a loopActions) ShowPrompt(s string) error { return a.p.lcd.ShowLine(s) }

func (a loopActions) Echo(c byte) error { return a.p.lcd.WriteChar(c) }

func (a loopActions) Erase() error { return a.p.lcd.Backspace() }

func (a loopActions) ShowStatus() error { return a.p.lcd.ShowLine(Identity) }

func (a loopActions) Refresh() error { return a.p.refresh() }

func (p *Panel) setBacklight(on bool) error {
	addr := AddrBacklightOff
	if on {
		addr = AddrBacklightOn
	}
	return p.port.Write(addr, 0)
}

func (p *Panel) setRefreshRate(ticks int) error {
	p.refreshTicks = uint32(ticks)
	return nil
}

// refresh restores the idle display: cleared text line, repainted clock.
func (p *Panel) refresh() error {
	if err := p.lcd.ShowLine(""); err != nil {
		return err
	}
	return p.paintClock()
}

// The exported mutators mirror the keypad functions for the diagnostic
// console. They serialize against the cooperative loop.

// SetBacklight pulses the matching backlight strobe address.
func (p *Panel) SetBacklight(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setBacklight(on)
}

// SetTime sets the RTC time of day. The clock display picks the change up
// on the next repaint.
func (p *Panel) SetTime(hours, minutes int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clock.SetTime(hours, minutes)
}

// SetDay sets the RTC day counter.
func (p *Panel) SetDay(days int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clock.SetDay(days)
}

// SetRefreshRate changes the repaint cadence, in display ticks.
func (p *Panel) SetRefreshRate(ticks int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setRefreshRate(ticks)
}
