// Package resultsui provides the Bubble Tea results browser.
package resultsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adriansteffan/jumbletype/internal/model"
	"github.com/adriansteffan/jumbletype/internal/stats"
	"github.com/adriansteffan/jumbletype/internal/store"
)

const (
	viewTrials = iota
	viewLog
)

var (
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea results UI.
type Model struct {
	store *store.Store
	cfg   model.ResultsConfig

	report stats.Report
	errMsg string

	view       int
	trialTable table.Model
	logView    viewport.Model
	logTrialID int64

	filterMode  bool
	filterInput textinput.Model
	filterError string

	width  int
	height int
}

// NewModel constructs a results UI model.
func NewModel(st *store.Store, cfg model.ResultsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
	}
	m.initFilterInput()
	m.trialTable = buildTrialTable(nil, 0, 1)
	m.logView = viewport.New(0, 0)
	m.refreshReport()
	return m
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
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "/":
			return m.startFilter()
		case "enter":
			if m.view == viewTrials {
				m.openLog()
			}
			return m, nil
		case "esc":
			if m.view == viewLog {
				m.view = viewTrials
			}
			return m, nil
		case "g", "home":
			if m.view == viewTrials {
				m.trialTable.GotoTop()
			} else {
				m.logView.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.view == viewTrials {
				m.trialTable.GotoBottom()
			} else {
				m.logView.GotoBottom()
			}
			return m, nil
		default:
			if m.view == viewTrials {
				var cmd tea.Cmd
				m.trialTable, cmd = m.trialTable.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initFilterInput() {
	m.filterInput = textinput.New()
	m.filterInput.Prompt = "Last N trials (empty for all): "
	m.filterInput.CharLimit = 0
	m.filterInput.Cursor.SetMode(cursor.CursorBlink)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = 2
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.logView.Width = m.width
	m.logView.Height = bodyHeight
	m.trialTable.SetWidth(m.width)
	m.trialTable.SetHeight(maxInt(1, bodyHeight-1))
	promptWidth := lipgloss.Width(m.filterInput.Prompt)
	m.filterInput.Width = maxInt(10, m.width-promptWidth-2)
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render("Recorded Trials")
	if m.view == viewLog {
		title = titleStyle.Render(fmt.Sprintf("Trial %d", m.logTrialID))
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := headerStyle.Render(fmt.Sprintf("Showing: %s  trend window: %d", last, m.cfg.TrendWindow))
	return title + "\n" + summary
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("enter: apply  esc: cancel")
	}
	help := "Select: up/down  Log: enter  Filter: /  Quit: q"
	if m.view == viewLog {
		help = "Scroll: up/down/pgup/pgdn  Back: esc  Quit: q"
	}
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Filter (enter to apply, esc to cancel)", m.filterInput.View()}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.view == viewLog {
		return m.logView.View()
	}
	if len(m.report.Trials) == 0 {
		return "No trials found."
	}
	return tableMutedStyle.Render(m.trialTable.View())
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	_, bodyHeight, _ := m.layoutHeights()
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.trialTable = buildTrialTable(m.report.Trials, width, bodyHeight)
}

func (m *Model) openLog() {
	row := m.trialTable.SelectedRow()
	if len(row) == 0 {
		return
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return
	}
	entries, err := m.store.ListEvents(context.Background(), id)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.logTrialID = id
	m.logView.SetContent(renderLog(id, entries))
	m.logView.GotoTop()
	m.view = viewLog
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	if m.cfg.Last > 0 {
		m.filterInput.SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInput.SetValue("")
	}
	return m, m.filterInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		raw := strings.TrimSpace(m.filterInput.Value())
		last := 0
		if raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				m.filterError = "invalid value (use 0 or positive integer)"
				return m, nil
			}
			last = parsed
		}
		m.cfg.Last = last
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func buildTrialTable(trials []model.TrialAggregate, width, height int) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Ended", Width: 17},
		{Title: "RT (ms)", Width: 8},
		{Title: "Keys", Width: 5},
		{Title: "Backspaces", Width: 10},
		{Title: "CPM", Width: 7},
	}
	rows := make([]table.Row, 0, len(trials))
	for _, t := range trials {
		cpm, _ := stats.TrialMetrics(t.Keypresses, t.Backspaces, t.RTMs)
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", t.TrialID),
			t.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", t.RTMs),
			fmt.Sprintf("%d", t.Keypresses),
			fmt.Sprintf("%d", t.Backspaces),
			fmt.Sprintf("%.1f", cpm),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(trialTableStyles())
	return t
}

func trialTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func renderLog(trialID int64, entries []model.LogEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("Trial %d has no logged events.", trialID)
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("Trial %d keystroke log", trialID))}
	for i, e := range entries {
		var detail string
		if e.Action == model.ActionBackspace {
			detail = fmt.Sprintf("deleted %q (displayed %q)", e.DeletedRawChar, e.DeletedDisplayChar)
		} else {
			detail = fmt.Sprintf("typed %q -> %q", e.TypedChar, e.MappedChar)
		}
		lines = append(lines, fmt.Sprintf("%4d  +%5dms  %-9s %s", i+1, e.RT, e.Action, detail))
	}
	return strings.Join(lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}
