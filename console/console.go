// Package console implements the line-oriented diagnostic console used for
// bench probing: raw bus cycles, chip-select control, address sweeps,
// segment injection and front-panel equivalents of the keypad functions.
// Malformed input is reported and ignored; nothing here is fatal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ebenm/frontpanel/bus"
	"github.com/ebenm/frontpanel/panel"
)

// BusOps are the raw bus operations the console drives.
type BusOps interface {
	ReadCycle(sel bus.Select, addr uint16) (uint8, error)
	WriteCycle(sel bus.Select, addr uint16, value uint8) error
	SetChipSelect(sel bus.Select, assert bool) error
	Sweep(sel bus.Select) ([]uint16, error)
}

// PanelOps are the front-panel operations the console mirrors.
type PanelOps interface {
	SetBacklight(on bool) error
	SetTime(hours, minutes int) error
	SetDay(days int) error
	SetRefreshRate(ticks int) error
	InjectSegments(values []uint8) error
	Snapshot() panel.Status
}

// Console interprets one command per line. Numeric bus arguments are hex;
// panel arguments are decimal, matching the keypad encoding.
type Console struct {
	Bus   BusOps
	Panel PanelOps

	sel bus.Select // select used by r/w/sweep; starts at 0
}

// Run reads commands from r until EOF or ctx is done, writing responses
// to w.
func (c *Console) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.Exec(sc.Text(), w)
	}
	return sc.Err()
}

// Exec runs a single command line.
func (c *Console) Exec(line string, w io.Writer) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]
	var err error
	switch cmd {
	case "r":
		err = c.read(args, w)
	case "w":
		err = c.write(args, w)
	case "cs":
		err = c.chipSelect(args, w)
	case "sweep":
		err = c.sweep(w)
	case "seg":
		err = c.segments(args)
	case "bl":
		err = c.backlight(args)
	case "time":
		err = c.time(args)
	case "day":
		err = c.day(args)
	case "rate":
		err = c.rate(args)
	case "status":
		err = c.status(w)
	case "help":
		fmt.Fprint(w, help)
	default:
		err = fmt.Errorf("unknown command %q (try help)", cmd)
	}
	if err != nil {
		fmt.Fprintf(w, "?: %v\n", err)
	}
}

const help = `r <addr>          read one byte (hex)
w <addr> <val>    write one byte (hex)
cs <0|1|none>     choose the chip select for r/w/sweep
sweep             probe every address on the current chip select
seg <hex>...      inject raw segment slices and strobe
bl <0|1>          backlight off/on
time <HHMM>       set the clock time
day <D>           set the day counter
rate <N>          display ticks per refresh
status            tick counters, keypad code, clock
`

func (c *Console) read(args []string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: r <addr>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	v, err := c.Bus.ReadCycle(c.sel, addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%03x: %02x\n", addr, v)
	return nil
}

func (c *Console) write(args []string, w io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: w <addr> <val>")
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	v, err := parseByte(args[1])
	if err != nil {
		return err
	}
	if err := c.Bus.WriteCycle(c.sel, addr, v); err != nil {
		return err
	}
	fmt.Fprintf(w, "%03x= %02x\n", addr, v)
	return nil
}

func (c *Console) chipSelect(args []string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cs <0|1|none>")
	}
	if args[0] == "none" {
		c.sel = bus.Select0
		return c.Bus.SetChipSelect(bus.SelectNone, false)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("chip select %q: %w", args[0], err)
	}
	sel := bus.Select(n)
	if sel != bus.Select0 && sel != bus.Select1 {
		return fmt.Errorf("chip select %d out of range", n)
	}
	c.sel = sel
	fmt.Fprintf(w, "cs %d\n", n)
	return nil
}

func (c *Console) sweep(w io.Writer) error {
	hits, err := c.Bus.Sweep(c.sel)
	if err != nil {
		return err
	}
	for _, addr := range hits {
		fmt.Fprintf(w, "%03x\n", addr)
	}
	fmt.Fprintf(w, "%d hits\n", len(hits))
	return nil
}

func (c *Console) segments(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: seg <hex>...")
	}
	values := make([]uint8, 0, len(args))
	for _, a := range args {
		v, err := parseByte(a)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	return c.Panel.InjectSegments(values)
}

func (c *Console) backlight(args []string) error {
	if len(args) != 1 || (args[0] != "0" && args[0] != "1") {
		return fmt.Errorf("usage: bl <0|1>")
	}
	return c.Panel.SetBacklight(args[0] == "1")
}

func (c *Console) time(args []string) error {
	if len(args) != 1 || len(args[0]) != 4 {
		return fmt.Errorf("usage: time <HHMM>")
	}
	hours, err := strconv.Atoi(args[0][:2])
	if err != nil {
		return fmt.Errorf("time %q: %w", args[0], err)
	}
	minutes, err := strconv.Atoi(args[0][2:])
	if err != nil {
		return fmt.Errorf("time %q: %w", args[0], err)
	}
	return c.Panel.SetTime(hours, minutes)
}

func (c *Console) day(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: day <D>")
	}
	days, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("day %q: %w", args[0], err)
	}
	return c.Panel.SetDay(days)
}

func (c *Console) rate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rate <N>")
	}
	ticks, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("rate %q: %w", args[0], err)
	}
	if ticks <= 0 {
		return fmt.Errorf("rate must be positive")
	}
	return c.Panel.SetRefreshRate(ticks)
}

func (c *Console) status(w io.Writer) error {
	s := c.Panel.Snapshot()
	fmt.Fprintf(w, "%s\nclock %s\nbus ticks %d\ndisplay ticks %d\nkeypad %02x\n",
		panel.Identity, s.Clock, s.BusTicks, s.DisplayTicks, s.KeypadCode)
	return nil
}

func parseAddr(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil || v >= 1<<bus.AddressLines {
		return 0, fmt.Errorf("address %q out of range", s)
	}
	return uint16(v), nil
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("byte %q out of range", s)
	}
	return uint8(v), nil
}
