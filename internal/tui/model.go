// Package tui provides the Bubble Tea trial interface.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adriansteffan/jumbletype/internal/model"
	"github.com/adriansteffan/jumbletype/internal/trial"
)

const (
	focusField = iota
	focusButton
)

const (
	minContentWidth = 20
	maxContentWidth = 72
)

var (
	stimulusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	fieldStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A")).Padding(0, 1)
	fieldFocusStyle  = fieldStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Underline(true)
	buttonStyle      = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A")).Foreground(lipgloss.Color("#B0B0B0"))
	buttonFocusStyle = buttonStyle.BorderForeground(lipgloss.Color("#C89A3A")).Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	buttonOffStyle   = buttonStyle.Foreground(lipgloss.Color("#5A5A5A")).BorderForeground(lipgloss.Color("#3A3A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea trial UI around a trial.Controller.
// The controller owns the logical state; the model keeps only a
// projection of the field content and resynchronizes it from the
// controller before rendering.
type Model struct {
	ctrl *trial.Controller
	cfg  model.TrialConfig

	width  int
	height int

	focus int
	field string

	result  *model.Result
	aborted bool
}

// NewModel constructs a trial UI model.
func NewModel(ctrl *trial.Controller, cfg model.TrialConfig) *Model {
	return &Model{ctrl: ctrl, cfg: cfg}
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
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.result != nil {
			// Submitted trials accept no further input.
			return m, nil
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyShiftTab:
			m.toggleFocus()
			return m, nil
		case tea.KeyEnter:
			return m.handleEnter()
		case tea.KeyBackspace, tea.KeyDelete:
			if m.focus == focusField {
				m.ctrl.Backspace()
				m.syncField()
			}
			return m, nil
		case tea.KeySpace:
			m.handleRunes([]rune{' '}, msg.Paste)
			return m, nil
		case tea.KeyRunes:
			m.handleRunes(msg.Runes, msg.Paste)
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	m.syncField()
	contentWidth := m.contentWidth()

	sections := make([]string, 0, 4)
	if m.cfg.Stimulus != "" {
		sections = append(sections, stimulusStyle.Width(contentWidth).Render(m.cfg.Stimulus))
	}
	sections = append(sections, m.renderField(contentWidth))
	sections = append(sections, m.renderButton())
	sections = append(sections, footerStyle.Render("tab: switch focus  enter: newline / submit  esc: abort"))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// Result returns the emitted result record, or nil when the trial was
// aborted before submission.
func (m *Model) Result() *model.Result {
	return m.result
}

// Aborted reports whether the user quit without submitting.
func (m *Model) Aborted() bool {
	return m.aborted
}

func (m *Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.focus == focusButton {
		result, ok := m.ctrl.Submit()
		if !ok {
			return m, nil
		}
		m.result = &result
		return m, tea.Quit
	}
	m.ctrl.Keypress('\n')
	m.syncField()
	return m, nil
}

func (m *Model) handleRunes(runes []rune, paste bool) {
	if m.focus != focusField {
		return
	}
	if paste || len(runes) > 1 {
		// Paste attempts bypass per-character mapping; suppress.
		m.ctrl.Paste(string(runes))
		return
	}
	if len(runes) == 1 {
		m.ctrl.Keypress(runes[0])
		m.syncField()
	}
}

// syncField overwrites the projected field content from the canonical
// display input whenever the two diverge.
func (m *Model) syncField() {
	if text, changed := m.ctrl.Resync(m.field); changed {
		m.field = text
	}
}

func (m *Model) toggleFocus() {
	if m.focus == focusField {
		m.focus = focusButton
	} else {
		m.focus = focusField
	}
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return maxContentWidth
	}
	w := int(float64(m.width) * 0.70)
	if w > maxContentWidth {
		w = maxContentWidth
	}
	if w < minContentWidth {
		w = minContentWidth
	}
	return w
}

func (m *Model) renderField(contentWidth int) string {
	innerWidth := contentWidth - 4
	if innerWidth < 1 {
		innerWidth = 1
	}
	var body string
	if m.field == "" {
		placeholder := m.cfg.Placeholder
		body = placeholderStyle.Render(placeholder)
		if m.focus == focusField {
			body += cursorStyle.Render(" ")
		}
	} else {
		lines := wrapField(m.field, innerWidth)
		if m.focus == focusField {
			lines[len(lines)-1] += cursorStyle.Render(" ")
		}
		body = strings.Join(lines, "\n")
	}
	style := fieldStyle
	if m.focus == focusField {
		style = fieldFocusStyle
	}
	return style.Width(contentWidth).Render(body)
}

func (m *Model) renderButton() string {
	label := m.cfg.ButtonLabel
	switch {
	case !m.ctrl.CanSubmit():
		return buttonOffStyle.Render(label)
	case m.focus == focusButton:
		return buttonFocusStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}
