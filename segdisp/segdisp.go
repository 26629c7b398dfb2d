// Package segdisp composes the image for the shift-register driven
// 7-segment clock display and serializes it to the peripheral over the bus.
// The image is always rebuilt in full and transmitted whole; the wire never
// sees a partial update.
package segdisp

import (
	"time"
)

// ImageLen is the number of addressable slices in the display's shift
// register, one byte of segments each.
const ImageLen = 12

// Slice assignment across the register.
const (
	SliceSecOnes = iota
	SliceSecTens
	SliceMinOnes
	SliceMinTens
	SliceHourOnes
	SliceHourTens
	SliceDayOnes
	SliceDayTens
	SliceDayHundreds
)

// digitSegments translates a decimal digit into segments.
var digitSegments = [10]uint8{
	//     .gfedcba
	0: 0b00111111,
	1: 0b00000110,
	2: 0b01011011,
	3: 0b01001111,
	4: 0b01100110,
	5: 0b01101101,
	6: 0b01111101,
	7: 0b00000111,
	8: 0b01111111,
	9: 0b01101111,
}

const (
	// AllSegments is the error indicator for an out-of-range digit.
	AllSegments = 0b01111111
	// Blank leaves a slice dark.
	Blank = 0b00000000
	// colonBit drives the indicator LED wired to bit 7 of its slice.
	colonBit = 0b10000000
)

// colon indicators sit on the minute-ones and hour-ones slices.
var colonSlices = [2]int{SliceMinOnes, SliceHourOnes}

// DefaultSettle is the delay between loading the shift-data port and pulsing
// the shift-advance port.
const DefaultSettle = 2 * time.Microsecond

// Bus is the subset of bus operations the display needs.
type Bus interface {
	Write(addr uint16, value uint8) error
}

// Display composes and transmits the segment image. Port addresses are
// assigned by the caller from the peripheral address map.
type Display struct {
	Bus         Bus
	DataAddr    uint16        // shift-data port
	AdvanceAddr uint16        // shift-advance port
	StrobeAddr  uint16        // strobe/commit port
	Settle      time.Duration // zero means DefaultSettle

	image [ImageLen]uint8
}

// PresetAll fills every slice with value.
func (d *Display) PresetAll(value uint8) {
	for i := range d.image {
		d.image[i] = value
	}
}

// SetDigit places a decimal digit on one slice. An out-of-range digit turns
// every segment on as an error indicator; an out-of-range slice is ignored.
func (d *Display) SetDigit(slice, digit int) {
	if slice < 0 || slice >= ImageLen {
		return
	}
	if digit < 0 || digit > 9 {
		d.image[slice] = AllSegments
		return
	}
	d.image[slice] = digitSegments[digit]
}

// Load copies raw slice values into the image, for diagnostic injection.
// Extra values are dropped.
func (d *Display) Load(values []uint8) {
	d.PresetAll(Blank)
	for i, v := range values {
		if i >= ImageLen {
			return
		}
		d.image[i] = v
	}
}

// Image returns the composed image.
func (d *Display) Image() [ImageLen]uint8 {
	return d.image
}

// ComposeClock rebuilds the image from clock state. Day digits get leading
// zero suppression: a digit appears only if it or a more significant digit
// is non-zero, so day 0 leaves the whole day slot blank. Time digits are
// never suppressed. The colon indicators light when colon is set.
func (d *Display) ComposeClock(colon bool, days, hours, minutes, seconds int) {
	d.PresetAll(Blank)

	hundreds, tens, ones := days/100%10, days/10%10, days%10
	if hundreds != 0 {
		d.SetDigit(SliceDayHundreds, hundreds)
	}
	if hundreds != 0 || tens != 0 {
		d.SetDigit(SliceDayTens, tens)
	}
	if hundreds != 0 || tens != 0 || ones != 0 {
		d.SetDigit(SliceDayOnes, ones)
	}

	d.SetDigit(SliceHourTens, hours/10%10)
	d.SetDigit(SliceHourOnes, hours%10)
	d.SetDigit(SliceMinTens, minutes/10%10)
	d.SetDigit(SliceMinOnes, minutes%10)
	d.SetDigit(SliceSecTens, seconds/10%10)
	d.SetDigit(SliceSecOnes, seconds%10)

	if colon {
		for _, s := range colonSlices {
			d.image[s] |= colonBit
		}
	}
}

// Transmit shifts the image into the display and latches it: one leading
// zero byte, then each slice in order, each loaded on the shift-data port
// and clocked in with a pulse on the shift-advance port, then a single
// strobe pulse to commit. The extra leading byte matches what the register
// expects; do not drop it.
func (d *Display) Transmit() error {
	if err := d.shift(0); err != nil {
		return err
	}
	for _, v := range d.image {
		if err := d.shift(v); err != nil {
			return err
		}
	}
	return d.Bus.Write(d.StrobeAddr, 0)
}

func (d *Display) shift(value uint8) error {
	if err := d.Bus.Write(d.DataAddr, value); err != nil {
		return err
	}
	settle := d.Settle
	if settle == 0 {
		settle = DefaultSettle
	}
	time.Sleep(settle)
	return d.Bus.Write(d.AdvanceAddr, 0)
}
