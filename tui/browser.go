// ABOUTME: Interactive result browser: scrollable match list with live refresh
// ABOUTME: Bubble Tea model with viewport navigation and lipgloss styling

// Package tui provides an interactive terminal browser for search results.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures a browser session.
type Options struct {
	// Title is shown in the header bar.
	Title string
	// Header is the column header line.
	Header string
	// Rows are the rendered result lines.
	Rows []string
	// Rerun, if set, reloads the rows when the user presses r.
	Rerun func() ([]string, error)
}

// Key bindings for the browser
type browserKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

var browserKeys = browserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "go to top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "go to bottom"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rerun search"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Styles for the browser
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// model holds the browser state
type model struct {
	opts     Options
	rows     []string
	viewport viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool
	errorMsg string
}

// Run starts the browser and blocks until the user quits.
func Run(opts Options) error {
	m := model{opts: opts, rows: opts.Rows}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// title + column header + status/help line, plus one spare row
		chrome := 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
		m.viewport.SetContent(m.content())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, browserKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, browserKeys.Up):
			m.moveCursor(-1)

		case key.Matches(msg, browserKeys.Down):
			m.moveCursor(1)

		case key.Matches(msg, browserKeys.PageUp):
			m.moveCursor(-m.viewport.Height)

		case key.Matches(msg, browserKeys.PageDown):
			m.moveCursor(m.viewport.Height)

		case key.Matches(msg, browserKeys.Top):
			m.cursor = 0
			m.syncViewport()

		case key.Matches(msg, browserKeys.Bottom):
			m.cursor = len(m.rows) - 1
			m.syncViewport()

		case key.Matches(msg, browserKeys.Reload):
			if m.opts.Rerun != nil {
				rows, err := m.opts.Rerun()
				if err != nil {
					m.errorMsg = err.Error()
				} else {
					m.rows = rows
					m.errorMsg = ""
					if m.cursor >= len(m.rows) {
						m.cursor = len(m.rows) - 1
					}
					if m.cursor < 0 {
						m.cursor = 0
					}
					m.syncViewport()
				}
			}
		}
	}
	return m, nil
}

func (m *model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.syncViewport()
}

// syncViewport refreshes the content and keeps the cursor visible.
func (m *model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.content())
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	}
	if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// content renders the rows with the cursor line highlighted.
func (m *model) content() string {
	var b strings.Builder
	for i, row := range m.rows {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render(row))
		} else {
			b.WriteString(row)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := fmt.Sprintf(" %d results ", len(m.rows))
	if len(m.rows) > 0 {
		status = fmt.Sprintf(" %d/%d results ", m.cursor+1, len(m.rows))
	}
	if m.errorMsg != "" {
		status += errorStyle.Render(" " + m.errorMsg)
	}

	return titleStyle.Render(m.opts.Title) + "\n" +
		headerStyle.Render(m.opts.Header) + "\n" +
		m.viewport.View() + "\n" +
		statusStyle.Render(status) + "  ↑/↓ move · g/G jump · r rerun · q quit"
}
