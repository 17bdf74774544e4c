package key

import (
	"fmt"
	"unicode"
)

// Modifier is a bitmask of modifier keys held during a key press.
type Modifier uint8

const (
	// ModNone means no modifiers.
	ModNone Modifier = 0
	// ModCtrl is the Control key.
	ModCtrl Modifier = 1 << iota
	// ModAlt is the Alt key.
	ModAlt
	// ModShift is the Shift key.
	ModShift
	// ModMeta is the Meta/Command key.
	ModMeta
)

// With returns the modifier set with m added.
func (mod Modifier) With(m Modifier) Modifier {
	return mod | m
}

// Has reports whether m is in the set.
func (mod Modifier) Has(m Modifier) bool {
	return mod&m != 0
}

// Event represents a single key press.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Mod contains the active modifier keys.
	Mod Modifier
}

// NewRune creates an event for a plain character key.
func NewRune(r rune) Event {
	return Event{Key: KeyRune, Rune: r}
}

// NewSpecial creates an event for a non-character key.
func NewSpecial(k Key) Event {
	return Event{Key: k}
}

// IsPrintable reports whether the event carries a plain printable
// character with no Ctrl/Alt/Meta modifier.
func (e Event) IsPrintable() bool {
	if e.Key != KeyRune {
		return false
	}
	if e.Mod.Has(ModCtrl) || e.Mod.Has(ModAlt) || e.Mod.Has(ModMeta) {
		return false
	}
	return e.Rune != 0 && unicode.IsPrint(e.Rune)
}

// String returns a readable description of the event.
func (e Event) String() string {
	if e.Key == KeyRune {
		return fmt.Sprintf("Rune(%q)", e.Rune)
	}
	return e.Key.String()
}
