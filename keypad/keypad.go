// Package keypad turns raw scan codes from the front panel's 4x4 keypad
// into debounced logical tokens and assembles them into the two-stage
// command entry protocol (select a function number, then supply its
// argument).
package keypad

// Token is a logical key. Values 0 through 9 are the digit keys; named
// function keys follow.
type Token uint8

const (
	Enter Token = iota + 10
	Clear
	Left
	Up
	Down
	Status
	Invalid
)

// IsDigit reports whether t is a digit key.
func (t Token) IsDigit() bool {
	return t <= 9
}

func (t Token) String() string {
	if t.IsDigit() {
		return string([]byte{'0' + byte(t)})
	}
	switch t {
	case Enter:
		return "ENTER"
	case Clear:
		return "CLEAR"
	case Left:
		return "LEFT"
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Status:
		return "STATUS"
	}
	return "INVALID"
}

// Raw scan reads carry a pressed flag in the high bit and the scan code in
// the low five bits.
const (
	PressedBit = 0b10000000
	codeMask   = 0b00011111
)

// scanTokens maps the 5-bit scan field to tokens, row by row across the
// matrix (1 2 3 ^ / 4 5 6 v / 7 8 9 S / C 0 E <). Codes outside the wired
// matrix stay Invalid.
var scanTokens = [32]Token{
	0: 1, 1: 2, 2: 3, 3: Up,
	4: 4, 5: 5, 6: 6, 7: Down,
	8: 7, 9: 8, 10: 9, 11: Status,
	12: Clear, 13: 0, 14: Enter, 15: Left,

	16: Invalid, 17: Invalid, 18: Invalid, 19: Invalid,
	20: Invalid, 21: Invalid, 22: Invalid, 23: Invalid,
	24: Invalid, 25: Invalid, 26: Invalid, 27: Invalid,
	28: Invalid, 29: Invalid, 30: Invalid, 31: Invalid,
}

// Decode maps a raw scan read to its token. The pressed flag is ignored
// here; callers gate on it.
func Decode(raw uint8) Token {
	return scanTokens[raw&codeMask]
}
