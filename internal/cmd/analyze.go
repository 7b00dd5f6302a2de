package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/xpcrash/dsp/analysis"
	"github.com/cwbudde/xpcrash/dsp/effects"
	"github.com/cwbudde/xpcrash/dsp/window"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input>",
	Short: "Show what a freeze would capture",
	Long: `Analyze records the input up to --at, freezes, and prints level and
pitch properties of the captured loop for every channel.

Examples:
  xpcrash analyze drums.wav --at 1.5s
  xpcrash analyze voice.opus --at 800ms --length 4800 --window blackman`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeAt     time.Duration
	analyzeLength int
	analyzeWindow = windowValue(window.TypeHann)
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().DurationVar(&analyzeAt, "at", time.Second, "freeze position")
	analyzeCmd.Flags().IntVarP(&analyzeLength, "length", "l", 0, "loop length in samples (default: crash.length)")
	analyzeCmd.Flags().Var(&analyzeWindow, "window", "spectrum window (rectangular/hann/hamming/blackman/flattop)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	_, a, err := fileSource(args[0], false)
	if err != nil {
		return err
	}

	pc := streamConfig(cfg, a.SampleRate, a.NumChannels())

	fx, err := newCrash(cfg, pc, lengthOr(analyzeLength, cfg))
	if err != nil {
		return err
	}

	at := framesAt(analyzeAt, pc.SampleRate)
	if at < 0 {
		return fmt.Errorf("--at must not be negative: %s", analyzeAt)
	}
	frames := int(min(at, int64(a.Frames())))
	if frames < fx.Length() {
		logger.Warn("freeze position is shorter than the loop; the loop starts with silence",
			"frames", frames, "length", fx.Length())
	}

	if err := capture(fx, a.Channels, frames, pc.BlockSize); err != nil {
		return err
	}

	an, err := newAnalyzer(pc.SampleRate, fx.Length(), analysis.WithWindow(window.Type(analyzeWindow)))
	if err != nil {
		return err
	}

	reports := make([]analysis.Report, fx.Channels())
	for ch := range reports {
		if reports[ch], err = an.Analyze(fx.Loop(ch).Snapshot(nil)); err != nil {
			return err
		}
	}

	return printReports(cmd.OutOrStdout(), reports)
}

// capture records the first frames frames of channels into fx, block by
// block, and freezes it.
func capture(fx *effects.Crash, channels [][]float64, frames, blockSize int) error {
	view := make([][]float64, len(channels))

	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)
		for ch, d := range channels {
			view[ch] = d[start:end]
		}
		if err := fx.ProcessBlock(view); err != nil {
			return err
		}
	}

	fx.SetFreeze(true)

	return nil
}

func printReports(w io.Writer, reports []analysis.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Channel\tLength\tPeak [dB]\tRMS [dB]\tCrest [dB]\tRepeat [Hz]\tDominant [Hz]\n")
	fmt.Fprintf(tw, "-------\t------\t---------\t--------\t----------\t-----------\t-------------\n")

	for ch, r := range reports {
		fmt.Fprintf(tw, "%d\t%d\t%.1f\t%.1f\t%.1f\t%.2f\t%.1f\n",
			ch, r.Length, r.PeakDB, r.RMSDB, r.CrestDB, r.RepeatHz, r.DominantHz)
	}

	return tw.Flush()
}
