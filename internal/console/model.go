// Package console provides the Bubble Tea interactive console.
package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sup9097/table-dice-app/internal/model"
	"github.com/sup9097/table-dice-app/internal/predictor"
)

const maxOutputLines = 2000

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	echoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	outputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	promptPrefix = "> "
)

type outputLine struct {
	text  string
	style lipgloss.Style
}

// Model implements the Bubble Tea console.
type Model struct {
	p        *predictor.Predictor
	settings model.Settings

	input  textinput.Model
	output viewport.Model
	lines  []outputLine

	width  int
	height int
}

// NewModel constructs a console over p.
func NewModel(p *predictor.Predictor, settings model.Settings) *Model {
	input := textinput.New()
	input.Prompt = promptPrefix
	input.Placeholder = "t/i/s/p/m/a/u/r/c/v/h/q"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Focus()

	m := &Model{
		p:        p,
		settings: settings,
		input:    input,
		output:   viewport.New(0, 0),
	}
	m.appendText(helpText, mutedStyle)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.refreshOutput()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(line) == "" {
				return m, nil
			}
			m.appendText(promptPrefix+line, echoStyle)
			out, quit, err := m.execute(context.Background(), line)
			if out != "" {
				m.appendText(out, outputStyle)
			}
			if err != nil {
				m.appendText(err.Error(), errorStyle)
			}
			m.refreshOutput()
			if quit {
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.renderHeader()
	if m.width == 0 || m.height == 0 {
		return header + "\n" + m.input.View()
	}
	footer := mutedStyle.Render("enter: run  pgup/pgdn: scroll  esc: quit")
	return strings.Join([]string{
		fitLine(header, m.width),
		m.output.View(),
		fitLine(m.input.View(), m.width),
		fitLine(footer, m.width),
	}, "\n")
}

func (m *Model) renderHeader() string {
	t := m.p.Current()
	rows := len(m.p.History(t))
	state := "untrained"
	if m.p.Trained(t) {
		state = "trained"
	}
	segments := []string{
		fmt.Sprintf("Table %s (%s)", t, t.Kind()),
		fmt.Sprintf("%d rolls", rows),
		"model " + state,
	}
	acc := m.p.Accuracy()
	if acc.Empty() {
		segments = append(segments, "accuracy n/a")
	} else {
		segments = append(segments, fmt.Sprintf("accuracy %d/%d (%.1f%%)", acc.Matches, acc.Total, acc.Percentage()))
	}
	return headerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.output.Width = m.width
	m.output.Height = maxInt(1, m.height-3)
	m.input.Width = maxInt(10, m.width-lipgloss.Width(m.input.Prompt)-1)
}

func (m *Model) appendText(text string, style lipgloss.Style) {
	for _, line := range strings.Split(text, "\n") {
		m.lines = append(m.lines, outputLine{text: line, style: style})
	}
	if over := len(m.lines) - maxOutputLines; over > 0 {
		m.lines = m.lines[over:]
	}
}

func (m *Model) refreshOutput() {
	var rendered []string
	for _, line := range m.lines {
		for _, part := range wrapLine(line.text, m.width) {
			rendered = append(rendered, line.style.Render(part))
		}
	}
	m.output.SetContent(strings.Join(rendered, "\n"))
	m.output.GotoBottom()
}

func fitLine(s string, width int) string {
	w := lipgloss.Width(s)
	if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
