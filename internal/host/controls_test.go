package host

import (
	"sync"
	"testing"

	"github.com/cwbudde/xpcrash/dsp/effects"
)

func TestNewControlsClampsLength(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{1024, 1024},
		{0, effects.MinCrashLength},
		{1 << 20, effects.MaxCrashLength},
	}

	for _, tt := range tests {
		if got := NewControls(tt.in, false).State().Length; got != tt.want {
			t.Errorf("NewControls(%d).Length = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestControlsToggle(t *testing.T) {
	c := NewControls(1024, false)

	if !c.ToggleFreeze() || !c.State().Freeze {
		t.Fatal("first toggle must freeze")
	}
	if c.ToggleFreeze() || c.State().Freeze {
		t.Fatal("second toggle must release")
	}
	if !c.ToggleHold() || !c.State().Frozen() {
		t.Fatal("hold toggle must freeze the state")
	}
}

func TestControlsLengthArithmetic(t *testing.T) {
	c := NewControls(1024, false)

	if got := c.ScaleLength(2); got != 2048 {
		t.Errorf("ScaleLength(2) = %d, want 2048", got)
	}
	if got := c.ScaleLength(0.001); got != effects.MinCrashLength {
		t.Errorf("ScaleLength(0.001) = %d, want %d", got, effects.MinCrashLength)
	}
	if got := c.AddLength(128); got != 256 {
		t.Errorf("AddLength(128) = %d, want 256", got)
	}
	if got := c.AddLength(-1000); got != effects.MinCrashLength {
		t.Errorf("AddLength(-1000) = %d, want %d", got, effects.MinCrashLength)
	}
}

func TestControlsApply(t *testing.T) {
	c := NewControls(1024, false)
	c.Apply(ControlState{Freeze: true, Hold: true, Length: 5})

	want := ControlState{Freeze: true, Hold: true, Length: effects.MinCrashLength}
	if got := c.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
}

func TestControlsConcurrentToggles(t *testing.T) {
	c := NewControls(1024, false)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c.ToggleFreeze()
				c.AddLength(1)
			}
		}()
	}
	wg.Wait()

	// 800 toggles end where they started.
	if c.State().Freeze {
		t.Error("even number of toggles left freeze set")
	}
	if got := c.State().Length; got != 1024+800 {
		t.Errorf("Length = %d, want %d", got, 1024+800)
	}
}
