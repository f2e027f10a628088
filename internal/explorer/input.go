package explorer

import "strings"

// Key is a logical control key.
type Key uint8

const (
	KeyForward Key = 1 << iota
	KeyBackward
	KeyTurnLeft
	KeyTurnRight
	KeyActivate
	KeyBack
)

// KeySet is a set of keys.
type KeySet uint8

// Has reports whether k is in the set.
func (s KeySet) Has(k Key) bool {
	return s&KeySet(k) != 0
}

// With returns the set with k added.
func (s KeySet) With(k Key) KeySet {
	return s | KeySet(k)
}

// ParseKey maps a browser KeyboardEvent.key value to a control key.
func ParseKey(name string) (Key, bool) {
	switch strings.ToLower(name) {
	case "w", "arrowup":
		return KeyForward, true
	case "s", "arrowdown":
		return KeyBackward, true
	case "a", "arrowleft":
		return KeyTurnLeft, true
	case "d", "arrowright":
		return KeyTurnRight, true
	case " ":
		return KeyActivate, true
	case "escape":
		return KeyBack, true
	}
	return 0, false
}

// Input is everything the viewer observed since the previous tick.
type Input struct {
	// Time is the animation clock in seconds.
	Time float32

	// Pointer position in normalized device coordinates (-1..1, +Y up).
	PointerX, PointerY float32
	// HasPointer is false while the pointer is outside the view.
	HasPointer bool
	// Click is set when the primary button was released this tick.
	Click bool

	// Held are keys currently down. Pressed are keys that went down this
	// tick; each press fires once.
	Held    KeySet
	Pressed KeySet
}
