package rawlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/keytally/internal/keylog"
	"github.com/verte-zerg/keytally/internal/model"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key_log.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestLoadSkipsHeader(t *testing.T) {
	keys, err := Load(writeLog(t, "Key Log:\na\nspace\r\n\nenter\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.Join(keys, ",") != "a,space,enter" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestLoadWithoutHeader(t *testing.T) {
	keys, err := Load(writeLog(t, "x\ny\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
}

func TestLoadRejectsReport(t *testing.T) {
	_, err := Load(writeLog(t, "Key Statistics:\nKey             Count      Percentage\n"))
	if !errors.Is(err, ErrSummaryFile) {
		t.Fatalf("expected ErrSummaryFile, got %v", err)
	}
}

func TestLoadAfterFinalizedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key_log.txt")
	first := keylog.New(path)
	if err := first.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := first.OnKeyPress(model.KeyEvent{Key: "q"}); err != nil {
		t.Fatalf("press: %v", err)
	}
	if _, err := first.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	second := keylog.New(path)
	if err := second.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if err := second.OnKeyPress(model.KeyEvent{Key: k}); err != nil {
			t.Fatalf("press %q: %v", k, err)
		}
	}

	keys, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.Join(keys, ",") != "a,b" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestLoadRejectsCompleteReport(t *testing.T) {
	content := "Key Statistics:\n" +
		"Key             Count      Percentage\n" +
		"----------------------------------------\n" +
		"q               1          100.00%\n" +
		"----------------------------------------\n" +
		"Total Keystrokes: 1\n"
	if _, err := Load(writeLog(t, content)); !errors.Is(err, ErrSummaryFile) {
		t.Fatalf("expected ErrSummaryFile, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}
