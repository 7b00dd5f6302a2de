package automation_test

import (
	"fmt"

	"github.com/cwbudde/xpcrash/dsp/core"
	"github.com/cwbudde/xpcrash/internal/automation"
	"github.com/cwbudde/xpcrash/internal/host"
)

func ExampleScript_Step() {
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(48000), core.WithBlockSize(480))

	s, err := automation.New(`
function on_block(block, state)
  -- stutter for half a second after one second
  local t = seconds(block)
  return { freeze = t >= 1 and t < 1.5 }
end
`, cfg)
	if err != nil {
		panic(err)
	}
	defer s.Close()

	for _, block := range []int64{0, 100, 149, 150} {
		st, _ := s.Step(block, host.ControlState{Length: 1024})
		fmt.Println(block, st.Freeze)
	}

	// Output:
	// 0 false
	// 100 true
	// 149 true
	// 150 false
}
