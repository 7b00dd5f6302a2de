package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/xpcrash/dsp/analysis"
	"github.com/cwbudde/xpcrash/dsp/effects"
	"github.com/cwbudde/xpcrash/internal/host"
	"github.com/cwbudde/xpcrash/internal/testutil"
)

type fakeLoops struct {
	loop   []float64
	frozen bool
}

func (f *fakeLoops) LoopSnapshot(dst []float64) ([]float64, bool) {
	dst = append(dst[:0], f.loop...)
	return dst, f.frozen
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()

	next, _ := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm
}

func TestKeysDriveControls(t *testing.T) {
	ctrl := host.NewControls(1024, false)
	m := New(ctrl, nil, nil)

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !ctrl.State().Freeze {
		t.Fatal("space did not freeze")
	}

	m = press(t, m, runes("h"))
	if !ctrl.State().Hold {
		t.Fatal("h did not hold")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := ctrl.State().Length; got != 2048 {
		t.Fatalf("up: length = %d, want 2048", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if got := ctrl.State().Length; got != 512 {
		t.Fatalf("down twice: length = %d, want 512", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := ctrl.State().Length; got != 512+LengthStep {
		t.Fatalf("right: length = %d, want %d", got, 512+LengthStep)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := ctrl.State().Length; got != effects.MinCrashLength {
		t.Fatalf("left: length = %d, want clamp at %d", got, effects.MinCrashLength)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if ctrl.State().Freeze {
		t.Fatal("second space did not release")
	}
	if m.Quitting() {
		t.Fatal("quitting without q")
	}
}

func TestQuit(t *testing.T) {
	m := New(host.NewControls(1024, false), nil, nil)

	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
	if !next.(Model).Quitting() {
		t.Fatal("Quitting() = false after q")
	}
	if next.View() != "" {
		t.Fatal("view not cleared on quit")
	}
}

func TestHelpToggle(t *testing.T) {
	m := New(host.NewControls(1024, false), nil, nil)

	short := m.View()
	m = press(t, m, runes("?"))
	full := m.View()

	if !strings.Contains(full, "+128") {
		t.Errorf("full help missing nudge binding:\n%s", full)
	}
	if strings.Contains(short, "+128") {
		t.Errorf("short help shows nudge binding:\n%s", short)
	}
}

func TestViewShowsState(t *testing.T) {
	ctrl := host.NewControls(480, false)
	an, err := analysis.NewAnalyzer(48000, 1024)
	if err != nil {
		t.Fatal(err)
	}
	m := New(ctrl, nil, an)

	v := m.View()
	for _, want := range []string{"RECORDING", "480 samples", "10.0 ms", "waiting for audio"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}

	ctrl.SetHold(true)
	v = m.View()
	if !strings.Contains(v, "FROZEN") || !strings.Contains(v, "(hold)") {
		t.Errorf("held view:\n%s", v)
	}
}

func TestTickRefreshesAnalysis(t *testing.T) {
	ctrl := host.NewControls(1200, true)
	an, err := analysis.NewAnalyzer(48000, 4096)
	if err != nil {
		t.Fatal(err)
	}

	loops := &fakeLoops{
		loop:   testutil.DeterministicSine(1000, 48000, 0.5, 1200),
		frozen: true,
	}
	m := New(ctrl, loops, an)

	next, cmd := m.Update(tickMsg{})
	if cmd == nil {
		t.Fatal("tick did not reschedule")
	}
	m = next.(Model)

	if !m.analyzed || !m.frozen {
		t.Fatalf("analyzed=%v frozen=%v", m.analyzed, m.frozen)
	}
	if m.report.Length != 1200 {
		t.Errorf("report length = %d, want 1200", m.report.Length)
	}
	if !strings.Contains(m.View(), "repeat=40.00Hz") {
		t.Errorf("view missing repeat rate:\n%s", m.View())
	}
}

func TestTickWithEmptyLoop(t *testing.T) {
	an, err := analysis.NewAnalyzer(48000, 1024)
	if err != nil {
		t.Fatal(err)
	}
	m := New(host.NewControls(1024, false), &fakeLoops{}, an)

	next, _ := m.Update(tickMsg{})
	if next.(Model).analyzed {
		t.Fatal("analyzed an empty loop")
	}
}
