package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/keytally/internal/hook"
	"github.com/verte-zerg/keytally/internal/keylog"
	"github.com/verte-zerg/keytally/internal/model"
)

type fakeRecorder struct {
	summary model.SessionSummary
	keys    []model.KeyCount
	err     error
}

func (f *fakeRecorder) InsertSession(_ context.Context, summary model.SessionSummary, keys []model.KeyCount) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.summary = summary
	f.keys = keys
	return 7, nil
}

type failingSource struct{}

func (failingSource) Subscribe(hook.Handler) error {
	return errors.New("permission denied")
}

func (failingSource) Wait(context.Context, hook.Chord) error {
	return nil
}

func TestRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key_log.txt")
	var out bytes.Buffer
	rec := &fakeRecorder{}
	sess := New(keylog.New(path), hook.NewScripted([]string{"a", "a", "b", "esc", "e"}), &out)
	sess.Recorder = rec
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	sess.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}

	if sess.State() != StateIdle {
		t.Fatalf("expected idle, got %s", sess.State())
	}
	result, err := sess.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sess.State() != StateTerminated {
		t.Fatalf("expected terminated, got %s", sess.State())
	}
	wantOut := "Press ESC to stop logging and save stats.\n\nStats saved to the file. Exiting...\n"
	if out.String() != wantOut {
		t.Fatalf("unexpected console output: %q", out.String())
	}
	if result.Report.Total != 5 || result.SessionID != 7 {
		t.Fatalf("unexpected result: %+v", result)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "a               2          40.00%\n") {
		t.Fatalf("unexpected report:\n%s", data)
	}
	if rec.summary.Total != 5 || rec.summary.Distinct != 4 || rec.summary.DurationMs != 60000 {
		t.Fatalf("unexpected summary: %+v", rec.summary)
	}
	if rec.summary.LogFile != path || len(rec.keys) != 4 || rec.keys[0].Key != "a" {
		t.Fatalf("unexpected recorded keys: %+v", rec.keys)
	}

	if _, err := sess.Run(context.Background()); !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
}

func TestRunWithoutKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key_log.txt")
	sess := New(keylog.New(path), hook.NewScripted([]string{"esc", "e"}), &bytes.Buffer{})
	result, err := sess.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Report.Total != 2 {
		t.Fatalf("expected chord keys to be counted, got %d", result.Report.Total)
	}
}

func TestRunRecordErrorIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key_log.txt")
	sess := New(keylog.New(path), hook.NewScripted([]string{"x", "esc", "e"}), &bytes.Buffer{})
	sess.Recorder = &fakeRecorder{err: errors.New("disk full")}
	var recordErr error
	sess.OnRecordError = func(err error) { recordErr = err }
	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if recordErr == nil {
		t.Fatalf("expected record error to be reported")
	}
}

func TestRunInitializeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "key_log.txt")
	sess := New(keylog.New(path), hook.NewScripted(nil), &bytes.Buffer{})
	_, err := sess.Run(context.Background())
	var ioErr *keylog.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if sess.State() != StateIdle {
		t.Fatalf("expected idle after failed start, got %s", sess.State())
	}
}

func TestRunSubscribeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key_log.txt")
	var out bytes.Buffer
	sess := New(keylog.New(path), failingSource{}, &out)
	_, err := sess.Run(context.Background())
	var hookErr *hook.HookError
	if !errors.As(err, &hookErr) || hookErr.Op != "subscribe" {
		t.Fatalf("expected subscribe HookError, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no banner, got %q", out.String())
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("expected log file to exist before subscribing: %v", statErr)
	}
}

func TestRunSourceClosedSkipsReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key_log.txt")
	sess := New(keylog.New(path), hook.NewScripted([]string{"a", "b"}), &bytes.Buffer{})
	if _, err := sess.Run(context.Background()); !errors.Is(err, hook.ErrSourceClosed) {
		t.Fatalf("expected ErrSourceClosed, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(data) != "Key Log:\na\nb\n" {
		t.Fatalf("expected raw log to remain, got %q", data)
	}
	if sess.State() != StateLogging {
		t.Fatalf("expected logging state, got %s", sess.State())
	}
}

func TestStateString(t *testing.T) {
	if StateFinalizing.String() != "finalizing" || State(9).String() != "state(9)" {
		t.Fatalf("unexpected state names")
	}
}
