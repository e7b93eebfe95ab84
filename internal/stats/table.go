// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/keytally/internal/model"
)

// column describes one table column. Numeric columns are right aligned.
type column struct {
	title   string
	numeric bool
}

var (
	keyColumns = []column{
		{title: "Key"},
		{title: "Count", numeric: true},
		{title: "Share", numeric: true},
	}
	sessionColumns = []column{
		{title: "ID", numeric: true},
		{title: "Ended"},
		{title: "Keystrokes", numeric: true},
		{title: "Distinct", numeric: true},
		{title: "KPM", numeric: true},
		{title: "Log file"},
	}
)

// keyTable lays out key counts with their share of total, in the given order.
func keyTable(counts []model.KeyCount, total int) []string {
	rows := make([][]string, 0, len(counts))
	for _, kc := range counts {
		share := 0.0
		if total > 0 {
			share = float64(kc.Count) / float64(total) * 100
		}
		rows = append(rows, []string{kc.Key, fmt.Sprintf("%d", kc.Count), fmt.Sprintf("%.2f%%", share)})
	}
	return formatTable(keyColumns, rows)
}

// sessionTable lays out one line per recorded session.
func sessionTable(sessions []model.SessionAggregate) []string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.SessionID),
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", s.Total),
			fmt.Sprintf("%d", s.Distinct),
			fmt.Sprintf("%.1f", KeysPerMinute(s.Total, s.DurationMs)),
			s.LogFile,
		})
	}
	return formatTable(sessionColumns, rows)
}

// formatTable renders a header line and one line per row, padding cells to the
// widest display width in their column. Extra cells beyond cols are dropped.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.title)
	}
	for _, row := range rows {
		for i := range cols {
			if w := runewidth.StringWidth(cell(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.title
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCells(cols, widths, header))
	for _, row := range rows {
		lines = append(lines, joinCells(cols, widths, row))
	}
	return lines
}

func joinCells(cols []column, widths []int, row []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		value := cell(row, i)
		pad := strings.Repeat(" ", max(widths[i]-runewidth.StringWidth(value), 0))
		if col.numeric {
			parts[i] = pad + value
		} else {
			parts[i] = value + pad
		}
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
