// Package tui provides the Bubble Tea key source and live session view.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keytally/internal/hook"
	"github.com/verte-zerg/keytally/internal/model"
	statsPkg "github.com/verte-zerg/keytally/internal/stats"
)

const topKeyCount = 5

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	recentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Status is the live tally shown while a session runs.
type Status struct {
	Report statsPkg.Report
	Recent []string
}

// Model implements the Bubble Tea live view and forwards every key press to the handler.
type Model struct {
	handler hook.Handler
	matcher *hook.Matcher
	keys    KeyMap
	status  func() Status

	width int
	done  bool
}

// NewModel constructs a live view model. status may be nil.
func NewModel(handler hook.Handler, chord hook.Chord, status func() Status) *Model {
	return &Model{
		handler: handler,
		matcher: hook.NewMatcher(chord),
		keys:    DefaultKeyMap(),
		status:  status,
	}
}

// Done reports whether the exit chord was pressed.
func (m *Model) Done() bool {
	return m.done
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.done {
			return m, nil
		}
		folded := key.Matches(msg, m.keys.Stop)
		for _, name := range keyNames(msg) {
			m.handler(model.KeyEvent{Key: name})
			if m.matcher.Feed(name) {
				// Keys pasted after the chord in the same message are not counted.
				m.done = true
				break
			}
		}
		if folded {
			m.done = true
		}
		if m.done {
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done {
		return ""
	}
	var st Status
	if m.status != nil {
		st = m.status()
	}
	lines := []string{
		titleStyle.Render("keytally") + "  " +
			labelStyle.Render("keystrokes ") + valueStyle.Render(fmt.Sprintf("%d", st.Report.Total)) + "  " +
			labelStyle.Render("distinct ") + valueStyle.Render(fmt.Sprintf("%d", len(st.Report.Rows))),
	}
	if top := statsPkg.TopKeys(st.Report.Counts(), topKeyCount); len(top) > 0 {
		segments := make([]string, 0, len(top))
		for _, kc := range top {
			segments = append(segments, fmt.Sprintf("%s %d", kc.Key, kc.Count))
		}
		lines = append(lines, labelStyle.Render("top ")+strings.Join(segments, " · "))
	}
	if len(st.Recent) > 0 {
		lines = append(lines, labelStyle.Render("recent ")+recentStyle.Render(strings.Join(st.Recent, " ")))
	}
	help := m.keys.Stop.Help()
	lines = append(lines, footerStyle.Render(fmt.Sprintf("%s: %s", help.Key, help.Desc)))
	content := strings.Join(lines, "\n")
	if m.width > 0 {
		content = lipgloss.NewStyle().MaxWidth(m.width).Render(content)
	}
	return content + "\n"
}
