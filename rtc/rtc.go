// Package rtc keeps the front panel's software real-time clock. It is
// stepped one second at a time by the main loop, which draws at most one
// step per pass from the tick distributor.
package rtc

import "fmt"

// MaxDays is the largest day count the three-digit display can show.
const MaxDays = 999

// Clock is the calendar state. The zero value reads day 0, 00:00:00.
type Clock struct {
	Days    int // 0 - 999
	Hours   int // 0 - 23
	Minutes int // 0 - 59
	Seconds int // 0 - 59
}

// Step advances the clock by one second, cascading minute, hour and day
// rollover. The day counter wraps back to zero past MaxDays.
func (c *Clock) Step() {
	c.Seconds++
	if c.Seconds < 60 {
		return
	}
	c.Seconds = 0
	c.Minutes++
	if c.Minutes < 60 {
		return
	}
	c.Minutes = 0
	c.Hours++
	if c.Hours < 24 {
		return
	}
	c.Hours = 0
	c.Days++
	if c.Days > MaxDays {
		c.Days = 0
	}
}

// SetTime sets the time of day and restarts the current second.
func (c *Clock) SetTime(hours, minutes int) error {
	if hours < 0 || hours > 23 {
		return fmt.Errorf("rtc: hours %d out of range", hours)
	}
	if minutes < 0 || minutes > 59 {
		return fmt.Errorf("rtc: minutes %d out of range", minutes)
	}
	c.Hours = hours
	c.Minutes = minutes
	c.Seconds = 0
	return nil
}

// SetDay sets the day counter.
func (c *Clock) SetDay(days int) error {
	if days < 0 || days > MaxDays {
		return fmt.Errorf("rtc: day %d out of range", days)
	}
	c.Days = days
	return nil
}

// String renders the clock as "DDD HH:MM:SS" for the diagnostic console.
func (c *Clock) String() string {
	return fmt.Sprintf("%03d %02d:%02d:%02d", c.Days, c.Hours, c.Minutes, c.Seconds)
}
