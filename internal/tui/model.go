// Package tui is the terminal front end of the live command.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/xpcrash/dsp/analysis"
	"github.com/cwbudde/xpcrash/internal/host"
)

// LengthStep is the left/right length nudge in samples.
const LengthStep = 128

const refreshInterval = 100 * time.Millisecond

// LoopSource yields the current loop of the monitored channel.
type LoopSource interface {
	LoopSnapshot(dst []float64) ([]float64, bool)
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	frozenStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#C0392B")).
			Padding(0, 1)
	liveStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#27AE60")).
			Padding(0, 1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
)

// Model drives the controls from key presses and shows the loop state.
type Model struct {
	ctrl     *host.Controls
	loops    LoopSource
	analyzer *analysis.Analyzer

	keys keyMap
	help help.Model

	snap     []float64
	report   analysis.Report
	analyzed bool
	frozen   bool
	err      error

	quitting bool
}

// New returns a model bound to ctrl. analyzer may be nil to skip the
// loop report.
func New(ctrl *host.Controls, loops LoopSource, analyzer *analysis.Analyzer) Model {
	return Model{
		ctrl:     ctrl,
		loops:    loops,
		analyzer: analyzer,
		keys:     defaultKeys(),
		help:     help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Freeze):
		m.ctrl.ToggleFreeze()
	case key.Matches(msg, m.keys.Hold):
		m.ctrl.ToggleHold()
	case key.Matches(msg, m.keys.Longer):
		m.ctrl.ScaleLength(2)
	case key.Matches(msg, m.keys.Shorter):
		m.ctrl.ScaleLength(0.5)
	case key.Matches(msg, m.keys.Nudge):
		m.ctrl.AddLength(LengthStep)
	case key.Matches(msg, m.keys.Trim):
		m.ctrl.AddLength(-LengthStep)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m *Model) refresh() {
	if m.loops == nil {
		return
	}

	m.snap, m.frozen = m.loops.LoopSnapshot(m.snap)
	if m.analyzer == nil || len(m.snap) == 0 {
		return
	}

	r, err := m.analyzer.Analyze(m.snap)
	if err != nil {
		m.err = err
		return
	}
	m.report, m.analyzed, m.err = r, true, nil
}

// Quitting reports whether the user asked to exit.
func (m Model) Quitting() bool { return m.quitting }

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.ctrl.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render("xpcrash"))
	b.WriteString("  ")

	if st.Frozen() {
		b.WriteString(frozenStyle.Render("FROZEN"))
	} else {
		b.WriteString(liveStyle.Render("RECORDING"))
	}
	if st.Hold {
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render("(hold)"))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "length  %d samples", st.Length)
	if m.analyzer != nil {
		fmt.Fprintf(&b, " (%.1f ms)", 1000*float64(st.Length)/m.analyzer.SampleRate())
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render("analysis: " + m.err.Error()))
	case m.analyzed:
		b.WriteString("loop    ")
		b.WriteString(m.report.String())
	default:
		b.WriteString(mutedStyle.Render("loop    waiting for audio"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	return b.String()
}
