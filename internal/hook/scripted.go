package hook

import (
	"context"

	"github.com/verte-zerg/keytally/internal/model"
)

// Scripted is a source that delivers a fixed sequence of keys.
type Scripted struct {
	keys    []string
	handler Handler
}

// NewScripted returns a source that will deliver keys in order.
func NewScripted(keys []string) *Scripted {
	return &Scripted{keys: append([]string(nil), keys...)}
}

// Subscribe implements Source.
func (s *Scripted) Subscribe(h Handler) error {
	if s.handler != nil {
		return &HookError{Op: "subscribe", Err: ErrAlreadySubscribed}
	}
	s.handler = h
	return nil
}

// Wait implements Source. Keys are delivered up to and including the chord.
func (s *Scripted) Wait(ctx context.Context, chord Chord) error {
	if s.handler == nil {
		return &HookError{Op: "wait", Err: ErrNotSubscribed}
	}
	matcher := NewMatcher(chord)
	for len(s.keys) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := s.keys[0]
		s.keys = s.keys[1:]
		s.handler(model.KeyEvent{Key: key})
		if matcher.Feed(key) {
			return nil
		}
	}
	return ErrSourceClosed
}
