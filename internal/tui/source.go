package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/verte-zerg/keytally/internal/hook"
)

// ErrNoTerminal is returned when the key source is not attached to a terminal.
var ErrNoTerminal = errors.New("stdin is not a terminal")

// Source delivers the key presses of the controlling terminal.
type Source struct {
	in      *os.File
	out     io.Writer
	status  func() Status
	handler hook.Handler
}

// NewSource returns a terminal key source reading stdin. status feeds the live view and may be nil.
func NewSource(status func() Status) *Source {
	return &Source{in: os.Stdin, out: os.Stdout, status: status}
}

// Subscribe implements hook.Source.
func (s *Source) Subscribe(h hook.Handler) error {
	if s.handler != nil {
		return &hook.HookError{Op: "subscribe", Err: hook.ErrAlreadySubscribed}
	}
	if !term.IsTerminal(int(s.in.Fd())) {
		return &hook.HookError{Op: "subscribe", Err: ErrNoTerminal}
	}
	s.handler = h
	return nil
}

// Wait implements hook.Source. It runs the live view until chord is pressed.
func (s *Source) Wait(ctx context.Context, chord hook.Chord) error {
	if s.handler == nil {
		return &hook.HookError{Op: "wait", Err: hook.ErrNotSubscribed}
	}
	m := NewModel(s.handler, chord, s.status)
	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(s.in),
		tea.WithOutput(s.out),
		tea.WithoutSignalHandler(),
	)
	if _, err := program.Run(); err != nil {
		return &hook.HookError{Op: "wait", Err: fmt.Errorf("failed to run key listener: %w", err)}
	}
	if !m.Done() {
		return hook.ErrSourceClosed
	}
	return nil
}
