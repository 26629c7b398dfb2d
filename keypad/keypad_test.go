package keypad

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	assert.Equal(t, Token(1), Decode(0))
	assert.Equal(t, Token(0), Decode(13))
	assert.Equal(t, Enter, Decode(14))
	assert.Equal(t, Clear, Decode(12))
	assert.Equal(t, Left, Decode(15))
	assert.Equal(t, Status, Decode(11))
	assert.Equal(t, Invalid, Decode(16))
	assert.Equal(t, Invalid, Decode(31))
	// pressed flag does not change the code
	assert.Equal(t, Token(5), Decode(PressedBit|5))
}

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func (f *fakeClock) now() time.Time {
	return f.t
}

func TestDebounce(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	d := &Debouncer{Now: clk.now}

	const keyFive = PressedBit | 5

	tok, ok := d.Observe(keyFive)
	require.True(t, ok, "first press accepted")
	assert.Equal(t, Token(5), tok)

	// held key does not repeat
	clk.advance(50 * time.Millisecond)
	_, ok = d.Observe(keyFive)
	assert.False(t, ok)

	// release then re-press below the interval: still rejected
	clk.advance(10 * time.Millisecond)
	_, ok = d.Observe(0)
	assert.False(t, ok)
	clk.advance(10 * time.Millisecond)
	_, ok = d.Observe(keyFive)
	assert.False(t, ok, "re-press at 70ms rejected")

	// release then re-press past the interval: accepted again
	_, ok = d.Observe(0)
	assert.False(t, ok)
	clk.advance(80 * time.Millisecond)
	tok, ok = d.Observe(keyFive)
	require.True(t, ok, "re-press at 150ms accepted")
	assert.Equal(t, Token(5), tok)
}

func TestDebounceDifferentKeyStillGated(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	d := &Debouncer{Now: clk.now}

	_, ok := d.Observe(PressedBit | 5)
	require.True(t, ok)

	clk.advance(30 * time.Millisecond)
	_, ok = d.Observe(PressedBit | 6)
	assert.False(t, ok, "different key inside the interval rejected")

	clk.advance(100 * time.Millisecond)
	tok, ok := d.Observe(PressedBit | 6)
	require.True(t, ok)
	assert.Equal(t, Token(6), tok)
}

func TestDebounceLastRaw(t *testing.T) {
	d := &Debouncer{Now: func() time.Time { return time.Unix(1000, 0) }}
	d.Observe(PressedBit | 3)
	assert.Equal(t, uint8(PressedBit|3), d.LastRaw())
	d.Observe(0)
	assert.Equal(t, uint8(0), d.LastRaw())
}

// fakeActions records everything the entry machine asks for.
type fakeActions struct {
	calls []string
}

func (f *fakeActions) SetBacklight(on bool) error {
	f.calls = append(f.calls, fmt.Sprintf("backlight(%v)", on))
	return nil
}

func (f *fakeActions) SetTime(hours, minutes int) error {
	f.calls = append(f.calls, fmt.Sprintf("time(%02d:%02d)", hours, minutes))
	return nil
}

func (f *fakeActions) SetDay(days int) error {
	f.calls = append(f.calls, fmt.Sprintf("day(%d)", days))
	return nil
}

func (f *fakeActions) SetRefreshRate(ticks int) error {
	f.calls = append(f.calls, fmt.Sprintf("rate(%d)", ticks))
	return nil
}

func (f *fakeActions) ShowPrompt(s string) error {
	f.calls = append(f.calls, "prompt("+s+")")
	return nil
}

func (f *fakeActions) Echo(c byte) error {
	f.calls = append(f.calls, "echo("+string(c)+")")
	return nil
}

func (f *fakeActions) Erase() error {
	f.calls = append(f.calls, "erase")
	return nil
}

func (f *fakeActions) ShowStatus() error {
	f.calls = append(f.calls, "status")
	return nil
}

func (f *fakeActions) Refresh() error {
	f.calls = append(f.calls, "refresh")
	return nil
}

func feed(t *testing.T, e *Entry, tokens ...Token) {
	t.Helper()
	for _, tok := range tokens {
		require.NoError(t, e.Handle(tok))
	}
}

func TestEntrySetTimeScenario(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	feed(t, e, Enter)
	assert.Equal(t, AwaitingFunction, e.State())
	assert.Equal(t, []string{"prompt(FUNC=)"}, a.calls)

	feed(t, e, 2, Enter)
	assert.Equal(t, AwaitingArgument, e.State())
	assert.Equal(t, "prompt(TIME=)", a.calls[len(a.calls)-1])

	feed(t, e, 0, 9, 3, 0, Enter)
	assert.Equal(t, Idle, e.State())
	assert.Empty(t, e.Buffer())
	assert.Contains(t, a.calls, "time(09:30)")
	assert.Equal(t, "refresh", a.calls[len(a.calls)-1])
}

func TestEntryUnknownFunction(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	feed(t, e, Enter, 9, Enter)
	assert.Equal(t, Idle, e.State())
	assert.Empty(t, e.Buffer())
	assert.Equal(t, "refresh", a.calls[len(a.calls)-1])
	assert.NotContains(t, a.calls, "prompt(DAY=)")
}

func TestEntryBacklight(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	feed(t, e, Enter, 1, Enter, 1, Enter)
	assert.Contains(t, a.calls, "backlight(true)")

	feed(t, e, Enter, 1, Enter, 0, Enter)
	assert.Contains(t, a.calls, "backlight(false)")
}

func TestEntryDayAndRate(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	feed(t, e, Enter, 3, Enter, 1, 0, 7, Enter)
	assert.Contains(t, a.calls, "day(107)")

	feed(t, e, Enter, 4, Enter, 5, Enter)
	assert.Contains(t, a.calls, "rate(5)")
}

func TestEntryMalformedArgumentDropped(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	// 930 is not HHMM
	feed(t, e, Enter, 2, Enter, 9, 3, 0, Enter)
	assert.Equal(t, Idle, e.State())
	for _, c := range a.calls {
		assert.NotContains(t, c, "time(")
	}
}

func TestEntryClearFromAnyState(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	feed(t, e, Enter, 2, Enter, 1, 2, Clear)
	assert.Equal(t, Idle, e.State())
	assert.Empty(t, e.Buffer())
	assert.Equal(t, "refresh", a.calls[len(a.calls)-1])
}

func TestEntryLeftErases(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	feed(t, e, 1, 2, Left)
	assert.Equal(t, "1", e.Buffer())
	assert.Equal(t, "erase", a.calls[len(a.calls)-1])

	// empty buffer: nothing to erase, no state change
	feed(t, e, Left, Left)
	assert.Empty(t, e.Buffer())
	erases := 0
	for _, c := range a.calls {
		if c == "erase" {
			erases++
		}
	}
	assert.Equal(t, 2, erases)
	assert.Equal(t, Idle, e.State())
}

func TestEntryStatusPreservesContext(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	feed(t, e, Enter, 2, Enter, Status)
	assert.Equal(t, AwaitingArgument, e.State())
	assert.Equal(t, "status", a.calls[len(a.calls)-1])
}

func TestEntryBufferBound(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	for i := 0; i < BufferCap+10; i++ {
		require.NoError(t, e.Handle(Token(7)))
	}
	assert.Len(t, e.Buffer(), BufferCap)
}

func TestEntryIgnoresUnwiredTokens(t *testing.T) {
	a := &fakeActions{}
	e := &Entry{Actions: a}

	feed(t, e, Up, Down, Invalid)
	assert.Empty(t, a.calls)
	assert.Equal(t, Idle, e.State())
}
