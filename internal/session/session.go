// Package session drives a logging session from startup to the final report.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/verte-zerg/keytally/internal/hook"
	"github.com/verte-zerg/keytally/internal/keylog"
	"github.com/verte-zerg/keytally/internal/model"
	"github.com/verte-zerg/keytally/internal/stats"
)

const (
	startBanner = "Press ESC to stop logging and save stats.\n"
	doneBanner  = "Stats saved to the file. Exiting..."
)

// State is a session lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateLogging
	StateFinalizing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLogging:
		return "logging"
	case StateFinalizing:
		return "finalizing"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrSessionFinished is returned when Run is called on a session that already ran.
var ErrSessionFinished = errors.New("session already finished")

// Recorder persists a finalized session summary.
type Recorder interface {
	InsertSession(ctx context.Context, summary model.SessionSummary, keys []model.KeyCount) (int64, error)
}

// Result describes a finished session.
type Result struct {
	Report    stats.Report
	StartedAt time.Time
	EndedAt   time.Time
	SessionID int64
}

// Session ties a logger to a key source.
type Session struct {
	logger *keylog.Logger
	source hook.Source
	chord  hook.Chord
	out    io.Writer

	// OnKeyError is called when a key press could not be appended to the log file.
	OnKeyError func(error)
	// Recorder, when set, receives the summary after the report is written.
	Recorder Recorder
	// OnRecordError is called when the summary could not be recorded.
	OnRecordError func(error)

	now   func() time.Time
	mu    sync.Mutex
	state State
}

// New returns an idle session. Banners are written to out.
func New(logger *keylog.Logger, source hook.Source, out io.Writer) *Session {
	return &Session{
		logger: logger,
		source: source,
		chord:  hook.MustParseChord(hook.DefaultChord),
		out:    out,
		now:    time.Now,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run initializes the log file, subscribes to the key source and blocks until
// the exit chord. It then writes the report and returns it.
func (s *Session) Run(ctx context.Context) (Result, error) {
	if s.State() != StateIdle {
		return Result{}, ErrSessionFinished
	}
	if err := s.logger.Initialize(); err != nil {
		return Result{}, err
	}
	if err := s.source.Subscribe(s.handleKey); err != nil {
		var hookErr *hook.HookError
		if errors.As(err, &hookErr) {
			return Result{}, err
		}
		return Result{}, &hook.HookError{Op: "subscribe", Err: err}
	}
	s.setState(StateLogging)
	startedAt := s.now()
	if _, err := fmt.Fprint(s.out, startBanner+"\n"); err != nil {
		return Result{}, err
	}

	if err := s.source.Wait(ctx, s.chord); err != nil {
		return Result{}, fmt.Errorf("wait for %s: %w", s.chord, err)
	}

	s.setState(StateFinalizing)
	report, err := s.logger.Finalize()
	if err != nil {
		return Result{}, err
	}
	result := Result{Report: report, StartedAt: startedAt, EndedAt: s.now()}
	if s.Recorder != nil {
		id, err := s.Recorder.InsertSession(ctx, s.summary(result), report.Counts())
		if err != nil {
			if s.OnRecordError != nil {
				s.OnRecordError(err)
			}
		} else {
			result.SessionID = id
		}
	}
	if _, err := fmt.Fprintln(s.out, doneBanner); err != nil {
		return result, err
	}
	s.setState(StateTerminated)
	return result, nil
}

func (s *Session) handleKey(ev model.KeyEvent) {
	if err := s.logger.OnKeyPress(ev); err != nil && s.OnKeyError != nil {
		s.OnKeyError(err)
	}
}

func (s *Session) summary(r Result) model.SessionSummary {
	return model.SessionSummary{
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
		LogFile:    s.logger.Path(),
		Total:      r.Report.Total,
		Distinct:   len(r.Report.Rows),
		DurationMs: r.EndedAt.Sub(r.StartedAt).Milliseconds(),
	}
}
