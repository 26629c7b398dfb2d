// Package charlcd drives the front panel's HD44780-compatible character
// display through its command and data ports on the peripheral bus. Text
// rendering stays minimal: command composition, cursor addressing and the
// write/erase helpers the command-entry machine needs.
package charlcd

import (
	"time"
)

// Bus is the subset of bus operations the display needs.
type Bus interface {
	Write(addr uint16, value uint8) error
	Read(addr uint16) (uint8, error)
}

// Display is the character display behind the bus. Port addresses are
// assigned by the caller from the peripheral address map.
type Display struct {
	Bus         Bus
	CommandAddr uint16
	DataAddr    uint16
}

const busyFlag = 0b10000000

// Command writes one instruction to the command port.
func (d *Display) Command(value uint8) error {
	return d.Bus.Write(d.CommandAddr, value)
}

// ReadBFAC reads the busy flag and address counter.
func (d *Display) ReadBFAC() (uint8, error) {
	return d.Bus.Read(d.CommandAddr)
}

// BusyWait polls until the controller clears its busy flag.
func (d *Display) BusyWait() error {
	bfac, err := d.ReadBFAC()
	if err != nil {
		return err
	}
	if bfac&busyFlag == 0 {
		return nil
	}
	// ok then, check every 40µs
	t := time.NewTicker(40 * time.Microsecond)
	defer t.Stop()
	for range t.C {
		bfac, err := d.ReadBFAC()
		if err != nil {
			return err
		}
		if bfac&busyFlag == 0 {
			return nil
		}
	}
	return nil
}

// Clear clears the display and homes the cursor.
func (d *Display) Clear() error {
	return d.Command(0b00000001)
}

// ReturnHome homes the cursor and resets the display shift.
func (d *Display) ReturnHome() error {
	return d.Command(0b00000010)
}

// SetEntryMode sets the data entry direction and whether to also shift.
func (d *Display) SetEntryMode(increment, shift bool) error {
	a := uint8(0b00000100)
	if increment {
		a += 0b00000010
	}
	if shift {
		a += 0b00000001
	}
	return d.Command(a)
}

// SetDisplayMode turns on/off the whole display, cursor, or cursor blink.
func (d *Display) SetDisplayMode(display, cursor, blink bool) error {
	a := uint8(0b00001000)
	if display {
		a += 0b00000100
	}
	if cursor {
		a += 0b00000010
	}
	if blink {
		a += 0b00000001
	}
	return d.Command(a)
}

// SetFunction sets the interface data length, line count and font.
func (d *Display) SetFunction(eightbit, twolines, largefont bool) error {
	a := uint8(0b00100000)
	if eightbit {
		a += 0b00010000
	}
	if twolines {
		a += 0b00001000
	}
	if largefont {
		a += 0b00000100
	}
	return d.Command(a)
}

// SetCursor sets the DD RAM address (0 <= a < 128) for the next write.
func (d *Display) SetCursor(a uint8) error {
	return d.Command(a + 0b10000000)
}

// Init runs the bring-up sequence: 8-bit bus, two lines, display on with a
// visible cursor, incrementing entry, cleared.
func (d *Display) Init() error {
	steps := []func() error{
		func() error { return d.SetFunction(true, true, false) },
		func() error { return d.SetDisplayMode(true, true, false) },
		func() error { return d.SetEntryMode(true, false) },
		d.Clear,
	}
	for _, step := range steps {
		if err := d.BusyWait(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}
	return d.BusyWait()
}

// WriteChar writes one character at the cursor.
func (d *Display) WriteChar(c byte) error {
	if err := d.BusyWait(); err != nil {
		return err
	}
	return d.Bus.Write(d.DataAddr, c)
}

// Print writes a string at the cursor.
func (d *Display) Print(s string) error {
	for i := 0; i < len(s); i++ {
		if err := d.WriteChar(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// Backspace steps the cursor back, blanks the character there and steps
// back again, visually erasing the last written character.
func (d *Display) Backspace() error {
	const cursorLeft = 0b00010000
	if err := d.BusyWait(); err != nil {
		return err
	}
	if err := d.Command(cursorLeft); err != nil {
		return err
	}
	if err := d.WriteChar(' '); err != nil {
		return err
	}
	if err := d.BusyWait(); err != nil {
		return err
	}
	return d.Command(cursorLeft)
}

// ShowLine clears the display and prints s from the home position.
func (d *Display) ShowLine(s string) error {
	if err := d.BusyWait(); err != nil {
		return err
	}
	if err := d.Clear(); err != nil {
		return err
	}
	return d.Print(s)
}
