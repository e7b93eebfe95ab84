package hook

import (
	"fmt"
	"strings"
)

// DefaultChord is the key combination that ends a logging session.
const DefaultChord = "esc+e"

// Chord is an ordered key combination such as Esc followed by E.
type Chord struct {
	keys []string
}

// ParseChord parses a literal "key+key" combination.
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return Chord{}, fmt.Errorf("invalid key combination %q", s)
		}
		keys = append(keys, part)
	}
	return Chord{keys: keys}, nil
}

// MustParseChord is like ParseChord but panics on an invalid combination.
func MustParseChord(s string) Chord {
	c, err := ParseChord(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Chord) String() string {
	return strings.Join(c.keys, "+")
}

// Matcher tracks key presses and reports when a chord has been completed.
// The chord keys must arrive back to back; any other key in between resets it.
type Matcher struct {
	chord Chord
	pos   int
}

// NewMatcher returns a matcher for chord.
func NewMatcher(chord Chord) *Matcher {
	return &Matcher{chord: chord}
}

// Feed records key and reports whether it completed the chord.
func (m *Matcher) Feed(key string) bool {
	keys := m.chord.keys
	if len(keys) == 0 {
		return false
	}
	key = strings.ToLower(key)
	switch {
	case key == keys[m.pos]:
		m.pos++
	case key == keys[0]:
		m.pos = 1
	default:
		m.pos = 0
	}
	if m.pos == len(keys) {
		m.pos = 0
		return true
	}
	return false
}
