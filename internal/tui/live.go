// Package tui renders live sweep progress in the terminal.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/verisim/verisim/internal/report"
	"github.com/verisim/verisim/internal/sampler"
	"github.com/verisim/verisim/internal/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// ResultMsg carries one completed configuration point.
type ResultMsg struct {
	Total  int
	Record report.Record
}

// DoneMsg signals the sweep finished and, when stored, where.
type DoneMsg struct {
	SweepID string
}

// Model displays sweep progress from a channel of results. The sweep
// itself runs in a separate goroutine; the model only consumes.
type Model struct {
	results <-chan tea.Msg

	total   int
	done    int
	passed  int
	failed  int
	errored int

	last    report.Record
	history []float64

	sweepID  string
	finished bool
}

func NewModel(results <-chan tea.Msg) Model {
	return Model{results: results}
}

func (m Model) Init() tea.Cmd {
	return m.wait()
}

func (m Model) wait() tea.Cmd {
	return func() tea.Msg { return <-m.results }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case ResultMsg:
		m.total = msg.Total
		m.done++
		m.last = msg.Record
		switch {
		case msg.Record.Error != "":
			m.errored++
		case msg.Record.Passed:
			m.passed++
		default:
			m.failed++
		}
		if e, ok := msg.Record.Bundles[sampler.BundleEnergyError]; ok {
			m.history = append(m.history, logSafe(e[stats.MaxAbs]))
		}
		return m, m.wait()
	case DoneMsg:
		m.finished = true
		m.sweepID = msg.SweepID
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("CONSERVATION SWEEP") + "\n")

	s.WriteString(progressBar(m.done, m.total) + "\n\n")
	s.WriteString(labelStyle.Render("Completed") + valueStyle.Render(fmt.Sprintf("%d/%d", m.done, m.total)) + "\n")
	s.WriteString(labelStyle.Render("Passed") + passStyle.Render(fmt.Sprintf("%d", m.passed)) + "\n")
	s.WriteString(labelStyle.Render("Failed") + failStyle.Render(fmt.Sprintf("%d", m.failed+m.errored)) + "\n")

	if m.last.Key != "" {
		s.WriteString(labelStyle.Render("Last point") + valueStyle.Render(m.last.Key) + "\n")
		if e, ok := m.last.Bundles[sampler.BundleEnergyError]; ok {
			s.WriteString(labelStyle.Render("Energy err") + valueStyle.Render(fmt.Sprintf("%.3e", e[stats.MaxAbs])) + "\n")
		}
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(6), asciigraph.Width(50),
			asciigraph.Caption("log10 energy error MaxAbs per run"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if m.finished {
		if m.sweepID != "" {
			s.WriteString("\n" + valueStyle.Render("saved as "+m.sweepID) + "\n")
		}
	} else {
		s.WriteString(helpStyle.Render("q: quit"))
	}
	return s.String()
}

func progressBar(done, total int) string {
	const width = 40
	if total <= 0 {
		return "[" + strings.Repeat("-", width) + "]"
	}
	filled := done * width / total
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

// logSafe maps an error magnitude onto a log axis, clamping zero to the
// floor of the plot instead of -Inf.
func logSafe(v float64) float64 {
	if v <= 0 {
		return -16
	}
	return math.Max(math.Log10(v), -16)
}
