package host

import (
	"fmt"
	"slices"
)

// Automator changes the controls at block boundaries during offline
// rendering. Step receives the index of the block about to be processed
// and the current controls and returns the controls to use.
type Automator interface {
	Step(block int64, st ControlState) (ControlState, error)
}

// AutomatorFunc adapts a function to Automator.
type AutomatorFunc func(block int64, st ControlState) (ControlState, error)

// Step implements Automator.
func (f AutomatorFunc) Step(block int64, st ControlState) (ControlState, error) {
	return f(block, st)
}

// Chain runs automators in order, each seeing the previous result.
func Chain(automators ...Automator) Automator {
	return AutomatorFunc(func(block int64, st ControlState) (ControlState, error) {
		var err error
		for _, a := range automators {
			if a == nil {
				continue
			}
			if st, err = a.Step(block, st); err != nil {
				return st, err
			}
		}
		return st, nil
	})
}

// FreezeEvent sets the freeze control once playback reaches Frame.
type FreezeEvent struct {
	Frame  int64
	Freeze bool
}

// Schedule is an Automator that toggles freeze at fixed frame positions.
// Events take effect at the first block starting at or after their frame.
type Schedule struct {
	blockSize int
	events    []FreezeEvent
	next      int
}

// NewSchedule returns a schedule for blocks of blockSize frames.
func NewSchedule(blockSize int, events ...FreezeEvent) (*Schedule, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("schedule block size must be > 0: %d", blockSize)
	}

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b FreezeEvent) int {
		switch {
		case a.Frame < b.Frame:
			return -1
		case a.Frame > b.Frame:
			return 1
		default:
			return 0
		}
	})

	return &Schedule{blockSize: blockSize, events: sorted}, nil
}

// Step implements Automator.
func (s *Schedule) Step(block int64, st ControlState) (ControlState, error) {
	start := block * int64(s.blockSize)
	for s.next < len(s.events) && s.events[s.next].Frame <= start {
		st.Freeze = s.events[s.next].Freeze
		s.next++
	}
	return st, nil
}
