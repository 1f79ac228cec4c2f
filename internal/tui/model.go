package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"krunq/internal/report"
	"krunq/internal/runq"
)

// Controller defines the subset of app.App behaviour the watch view needs.
type Controller interface {
	Collect(ctx context.Context, cpuSpec string) ([]*runq.CPUReport, error)
}

// Model represents the Bubble Tea state: a current-task table refreshed on
// a timer from the snapshot target.
type Model struct {
	controller Controller
	cpuSpec    string
	interval   time.Duration

	table   table.Model
	reports []*runq.CPUReport

	statusMsg string
	err       error
	loading   bool

	width  int
	height int

	lastUpdated time.Time
}

// New constructs a watch model with default styles.
func New(ctrl Controller, cpuSpec string, interval time.Duration) *Model {
	columns := []table.Column{
		{Title: "CPU", Width: 4},
		{Title: "PID", Width: 8},
		{Title: "TASK", Width: 20},
		{Title: "PRIO", Width: 5},
		{Title: "COMMAND", Width: 18},
		{Title: "RUNTIME", Width: 16},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
	)

	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Model{
		controller: ctrl,
		cpuSpec:    cpuSpec,
		interval:   interval,
		table:      tbl,
		statusMsg:  "Reading run queues…",
		loading:    true,
	}
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(ctrl Controller, cpuSpec string, interval time.Duration) error {
	m := New(ctrl, cpuSpec, interval)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return collectCmd(m.controller, m.cpuSpec)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.height > 6 {
			m.table.SetHeight(m.height - 6)
		}

	case reportsMsg:
		m.loading = false
		m.err = nil
		m.reports = msg.reports
		m.table.SetRows(rowsFrom(msg.reports))
		m.lastUpdated = time.Now()
		m.statusMsg = fmt.Sprintf("%d CPUs. Press r to refresh, q to quit.", len(msg.reports))
		return m, tickCmd(m.interval)

	case tickMsg:
		m.loading = true
		return m, collectCmd(m.controller, m.cpuSpec)

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, tickCmd(m.interval)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, collectCmd(m.controller, m.cpuSpec)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	statusStyle := lipgloss.NewStyle().Bold(true)
	if m.err != nil {
		statusStyle = statusStyle.Foreground(lipgloss.Color("203"))
	} else {
		statusStyle = statusStyle.Foreground(lipgloss.Color("42"))
	}
	b.WriteString(statusStyle.Render(m.statusMsg))
	b.WriteByte('\n')

	if m.loading {
		b.WriteString("Reading run queues…\n")
	} else if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		b.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteByte('\n')
	}

	b.WriteString(m.table.View())
	b.WriteByte('\n')

	help := "Commands: q quit • r refresh"
	if !m.lastUpdated.IsZero() {
		help += fmt.Sprintf(" • last update %s", m.lastUpdated.Format(time.Kitchen))
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func rowsFrom(reports []*runq.CPUReport) []table.Row {
	rows := make([]table.Row, 0, len(reports))
	for _, rep := range reports {
		curr := rep.Curr
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", rep.CPU),
			fmt.Sprintf("%d", curr.PID),
			fmt.Sprintf("%#x", curr.Addr),
			fmt.Sprintf("%d", curr.Prio),
			report.EscapeComm(curr.Comm),
			runq.FormatRuntime(curr.Runtime()),
		})
	}
	return rows
}

type reportsMsg struct {
	reports []*runq.CPUReport
}

type tickMsg time.Time

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func collectCmd(ctrl Controller, cpuSpec string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		reports, err := ctrl.Collect(ctx, cpuSpec)
		if err != nil {
			return errMsg{err}
		}
		return reportsMsg{reports: reports}
	}
}
