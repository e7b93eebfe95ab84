// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/keytally/internal/model"
)

const (
	reportTitle = "Key Statistics:"
	ruleWidth   = 40
)

// Row is one key line of a frequency report.
type Row struct {
	Key     string
	Count   int
	Percent float64
}

// Report contains precomputed data for frequency rendering.
type Report struct {
	Rows  []Row
	Total int
}

// BuildReport computes per-key percentages from the counter, keeping first-seen order.
func BuildReport(c *Counter) Report {
	return BuildReportFromCounts(c.Entries())
}

// BuildReportFromCounts computes a report from ordered key counts.
func BuildReportFromCounts(counts []model.KeyCount) Report {
	total := 0
	for _, kc := range counts {
		total += kc.Count
	}
	rows := make([]Row, 0, len(counts))
	for _, kc := range counts {
		pct := 0.0
		if total > 0 {
			pct = float64(kc.Count) / float64(total) * 100
		}
		rows = append(rows, Row{Key: kc.Key, Count: kc.Count, Percent: pct})
	}
	return Report{Rows: rows, Total: total}
}

// Counts returns the report rows as key counts.
func (r Report) Counts() []model.KeyCount {
	out := make([]model.KeyCount, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = model.KeyCount{Key: row.Key, Count: row.Count}
	}
	return out
}

// Lines renders the report in the log file format. Every line ends with a newline.
func (r Report) Lines() []string {
	rule := strings.Repeat("-", ruleWidth) + "\n"
	lines := make([]string, 0, len(r.Rows)+5)
	lines = append(lines,
		reportTitle+"\n",
		fmt.Sprintf("%-15s %-10s %-10s\n", "Key", "Count", "Percentage"),
		rule,
	)
	for _, row := range r.Rows {
		lines = append(lines, fmt.Sprintf("%-15s %-10d %.2f%%\n", row.Key, row.Count, row.Percent))
	}
	lines = append(lines, rule, fmt.Sprintf("Total Keystrokes: %d\n", r.Total))
	return lines
}

// WriteReport writes the rendered report to w.
func WriteReport(w io.Writer, r Report) error {
	for _, line := range r.Lines() {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
