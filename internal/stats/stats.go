// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/keytally/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	sparkLabel          = "Keystrokes: "
)

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// TerminalWidth returns the stdout width, or a fallback when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderSummary prints totals for the listed sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	total := 0
	best := 0
	var durationMs int64
	for _, s := range sessions {
		total += s.Total
		durationMs += s.DurationMs
		if s.Total > best {
			best = s.Total
		}
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", len(sessions)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Keystrokes: %d\n", total); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg per session: %.2f\n", float64(total)/float64(len(sessions))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best session: %d\n", best); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg KPM: %.2f\n", KeysPerMinute(total, durationMs)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// KeysPerMinute returns the key press rate over the given duration.
func KeysPerMinute(total int, durationMs int64) float64 {
	if durationMs <= 0 {
		return 0
	}
	return float64(total) / (float64(durationMs) / 60000.0)
}

// RenderSessions prints one row per session followed by a keystroke sparkline sized to width.
func RenderSessions(w io.Writer, sessions []model.SessionAggregate, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	values := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		values = append(values, float64(s.Total))
	}
	for _, line := range sessionTable(sessions) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if limit := width - len(sparkLabel); limit > 0 && len(values) > limit {
		values = values[len(values)-limit:]
	}
	if _, err := fmt.Fprintf(w, "\n%s%s\n\n", sparkLabel, Sparkline(values)); err != nil {
		return err
	}
	return nil
}

// RenderKeyTable prints the top keys of the given counts with their share of the total.
func RenderKeyTable(w io.Writer, title string, counts []model.KeyCount, top int) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "No key stats found.")
		return err
	}
	report := BuildReportFromCounts(counts)
	if top <= 0 {
		top = len(counts)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, line := range keyTable(TopKeys(counts, top), report.Total) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
