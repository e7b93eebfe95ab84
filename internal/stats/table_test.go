package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/keytally/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"a", "12", "97.50%"},
		{"backspace", "3", "8.00%"},
	}

	lines := formatTable(keyColumns, rows)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Key       Count  Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a            12 97.50%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "backspace     3  8.00%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	cols := []column{{title: "Key"}, {title: "N", numeric: true}}
	lines := formatTable(cols, [][]string{{"日", "1"}, {"ab", "2"}})
	if lines[1] != "日  1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab  2" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}

func TestKeyTableShares(t *testing.T) {
	counts := []model.KeyCount{{Key: "space", Count: 3}, {Key: "a", Count: 1}}
	lines := keyTable(counts, 8)
	want := []string{
		"Key   Count  Share",
		"space     3 37.50%",
		"a         1 12.50%",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %v", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
	if got := keyTable(counts[:1], 0); got[1] != "space     3 0.00%" {
		t.Fatalf("expected zero share without total, got %q", got[1])
	}
}

func TestSessionTableDropsEmptyTrailingCell(t *testing.T) {
	ended := time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local)
	lines := sessionTable([]model.SessionAggregate{
		{SessionID: 7, EndedAt: ended, Total: 120, Distinct: 9, DurationMs: 60000},
	})
	want := " 7 2026-03-01 09:30        120        9 120.0"
	if len(lines) != 2 || lines[1] != want {
		t.Fatalf("unexpected session rows: %q", lines)
	}
}
