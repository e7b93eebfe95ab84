package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keytally/internal/hook"
)

// KeyMap defines the bindings the live view reacts to.
type KeyMap struct {
	Stop key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Stop: key.NewBinding(
			// Terminals fold Esc followed quickly by E into a single alt+e event.
			key.WithKeys("alt+e"),
			key.WithHelp(hook.DefaultChord, "stop and save"),
		),
	}
}

// keyNames converts a terminal key message into physical key names.
func keyNames(msg tea.KeyMsg) []string {
	var names []string
	if msg.Alt {
		names = append(names, "esc")
	}
	switch msg.Type {
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			names = append(names, runeName(r))
		}
	case tea.KeySpace:
		names = append(names, "space")
	default:
		k := tea.Key(msg)
		k.Alt = false
		names = append(names, k.String())
	}
	return names
}

func runeName(r rune) string {
	switch r {
	case ' ':
		return "space"
	case '\t':
		return "tab"
	case '\n', '\r':
		return "enter"
	default:
		return string(r)
	}
}
