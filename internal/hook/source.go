// Package hook defines the key event source a logging session subscribes to.
package hook

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/keytally/internal/model"
)

// Handler receives every key press delivered by a source.
type Handler func(model.KeyEvent)

// Source delivers key presses to a subscribed handler.
type Source interface {
	// Subscribe installs h as the receiver of every key press.
	Subscribe(h Handler) error
	// Wait blocks until chord is pressed, the source ends, or ctx is done.
	Wait(ctx context.Context, chord Chord) error
}

var (
	// ErrAlreadySubscribed is returned when a source already has a handler.
	ErrAlreadySubscribed = errors.New("handler already subscribed")
	// ErrNotSubscribed is returned by Wait when no handler was installed.
	ErrNotSubscribed = errors.New("no handler subscribed")
	// ErrSourceClosed is returned by Wait when the source ran out of events before the chord.
	ErrSourceClosed = errors.New("key source closed before exit chord")
)

// HookError reports a failure to install or run the key listener.
type HookError struct {
	Op  string
	Err error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("key hook %s: %v", e.Op, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
