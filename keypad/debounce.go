package keypad

import "time"

// DefaultInterval is the minimum time between accepted key changes.
const DefaultInterval = 100 * time.Millisecond

// Debouncer filters contact bounce and hold-repeat from raw keypad scans.
// A pressed code is accepted only if it differs from the previously
// accepted one and the minimum interval has elapsed since the last accepted
// change. A "no key" read clears the accepted memory immediately, so the
// same key can fire again after release.
type Debouncer struct {
	Interval time.Duration    // zero means DefaultInterval
	Now      func() time.Time // test hook; nil means time.Now

	lastRaw      uint8
	lastAccepted uint8
	lastChange   time.Time
}

// Observe feeds one raw scan read through the filter. It returns the token
// and true when a new keypress is accepted.
func (d *Debouncer) Observe(raw uint8) (Token, bool) {
	d.lastRaw = raw
	if raw&PressedBit == 0 {
		d.lastAccepted = 0
		return Invalid, false
	}
	if raw == d.lastAccepted {
		return Invalid, false
	}
	now := d.now()
	if !d.lastChange.IsZero() && now.Sub(d.lastChange) < d.interval() {
		return Invalid, false
	}
	d.lastAccepted = raw
	d.lastChange = now
	return Decode(raw), true
}

// LastRaw returns the most recent raw scan read, for diagnostics.
func (d *Debouncer) LastRaw() uint8 {
	return d.lastRaw
}

func (d *Debouncer) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Debouncer) interval() time.Duration {
	if d.Interval == 0 {
		return DefaultInterval
	}
	return d.Interval
}
