package cmd

import (
	"github.com/spf13/pflag"

	"github.com/cwbudde/xpcrash/dsp/window"
)

// windowValue is a --window flag parsed at flag time.
type windowValue window.Type

var _ pflag.Value = (*windowValue)(nil)

func (w *windowValue) String() string { return window.Type(*w).String() }

func (w *windowValue) Set(s string) error {
	t, err := window.ParseType(s)
	if err != nil {
		return err
	}
	*w = windowValue(t)
	return nil
}

func (w *windowValue) Type() string { return "window" }
