package keypad

import (
	"fmt"
	"log"
	"strconv"
)

// BufferCap bounds the command entry buffer. Input beyond it is dropped
// silently; what was typed stays intact.
const BufferCap = 39

// State is the command entry stage.
type State int

const (
	// Idle: the clock is showing, nothing entered.
	Idle State = iota
	// AwaitingFunction: Enter was pressed, a function number is expected.
	AwaitingFunction
	// AwaitingArgument: a function is selected, its argument is expected.
	AwaitingArgument
)

// Front panel function numbers.
const (
	FnBacklight = 1 // argument 0 or 1
	FnTime      = 2 // argument HHMM
	FnDay       = 3 // argument 0 - 999
	FnRate      = 4 // argument: display ticks per refresh
)

var prompts = map[int]string{
	FnBacklight: "LIGHT=",
	FnTime:      "TIME=",
	FnDay:       "DAY=",
	FnRate:      "RATE=",
}

// Actions is everything the entry machine can do to the rest of the panel.
type Actions interface {
	SetBacklight(on bool) error
	SetTime(hours, minutes int) error
	SetDay(days int) error
	SetRefreshRate(ticks int) error

	ShowPrompt(s string) error // replace the display line with a prompt
	Echo(c byte) error         // echo an accepted digit after the prompt
	Erase() error              // visually remove the last echoed digit
	ShowStatus() error         // static identification text
	Refresh() error            // restore the idle display
}

// Entry assembles debounced tokens into commands. The zero value with
// Actions set is ready to use.
type Entry struct {
	Actions Actions

	state State
	fn    int
	buf   []byte
}

// State returns the current entry stage.
func (e *Entry) State() State {
	return e.state
}

// Buffer returns the pending entry text.
func (e *Entry) Buffer() string {
	return string(e.buf)
}

// Handle feeds one accepted token through the machine. Malformed entries
// are reported and dropped; the returned error only reflects display or
// peripheral failures.
func (e *Entry) Handle(t Token) error {
	switch {
	case t.IsDigit():
		if len(e.buf) >= BufferCap {
			return nil
		}
		c := '0' + byte(t)
		e.buf = append(e.buf, c)
		return e.Actions.Echo(c)
	case t == Enter:
		return e.enter()
	case t == Clear:
		return e.reset()
	case t == Left:
		if len(e.buf) == 0 {
			return nil
		}
		e.buf = e.buf[:len(e.buf)-1]
		return e.Actions.Erase()
	case t == Status:
		// Context is preserved; Clear gets back to the clock.
		return e.Actions.ShowStatus()
	default:
		log.Printf("keypad: token %s ignored", t)
		return nil
	}
}

func (e *Entry) enter() error {
	if e.state == AwaitingArgument {
		if len(e.buf) > 0 {
			if err := e.apply(); err != nil {
				log.Printf("keypad: %v", err)
			}
		}
		return e.reset()
	}
	if len(e.buf) == 0 {
		e.state = AwaitingFunction
		return e.Actions.ShowPrompt("FUNC=")
	}
	fn, err := strconv.Atoi(string(e.buf))
	prompt, known := prompts[fn]
	if err != nil || !known {
		log.Printf("keypad: unknown function %q", e.buf)
		return e.reset()
	}
	e.fn = fn
	e.buf = e.buf[:0]
	e.state = AwaitingArgument
	return e.Actions.ShowPrompt(prompt)
}

func (e *Entry) apply() error {
	arg := string(e.buf)
	switch e.fn {
	case FnBacklight:
		switch arg {
		case "0":
			return e.Actions.SetBacklight(false)
		case "1":
			return e.Actions.SetBacklight(true)
		}
		return fmt.Errorf("backlight argument %q is not 0 or 1", arg)
	case FnTime:
		if len(arg) != 4 {
			return fmt.Errorf("time argument %q is not HHMM", arg)
		}
		hours, err := strconv.Atoi(arg[:2])
		if err != nil {
			return fmt.Errorf("time argument %q: %w", arg, err)
		}
		minutes, err := strconv.Atoi(arg[2:])
		if err != nil {
			return fmt.Errorf("time argument %q: %w", arg, err)
		}
		return e.Actions.SetTime(hours, minutes)
	case FnDay:
		days, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("day argument %q: %w", arg, err)
		}
		return e.Actions.SetDay(days)
	case FnRate:
		ticks, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("rate argument %q: %w", arg, err)
		}
		if ticks <= 0 {
			return fmt.Errorf("rate argument %q must be positive", arg)
		}
		return e.Actions.SetRefreshRate(ticks)
	}
	return fmt.Errorf("function %d has no handler", e.fn)
}

func (e *Entry) reset() error {
	e.state = Idle
	e.fn = 0
	e.buf = e.buf[:0]
	return e.Actions.Refresh()
}
