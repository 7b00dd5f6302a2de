package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwbudde/xpcrash/dsp/analysis"
	"github.com/cwbudde/xpcrash/dsp/dither"
	"github.com/cwbudde/xpcrash/internal/automation"
	"github.com/cwbudde/xpcrash/internal/codec"
	"github.com/cwbudde/xpcrash/internal/config"
	"github.com/cwbudde/xpcrash/internal/host"
)

var renderCmd = &cobra.Command{
	Use:   "render [input...]",
	Short: "Apply the effect to audio files",
	Long: `Render processes WAV or Ogg Opus files through the effect and writes the
result. Without inputs it renders a synthetic test signal instead.

Freeze is driven by crash.freeze from the config, by --freeze-at and
--release-at, and by an optional Lua automation script. Several inputs are
rendered concurrently (render.workers).

Examples:
  # Freeze a drum loop after 1.5 seconds for the rest of the file
  xpcrash render drums.wav --out crashed.wav --freeze-at 1.5s

  # Stutter for half a second with a 20 ms loop
  xpcrash render voice.opus --out out.opus --freeze-at 2s --release-at 2.5s --length 960

  # Batch render into a directory
  xpcrash render *.wav --out-dir crashed/

  # Synthetic chord, 3 seconds, scripted
  xpcrash render --source chord --duration 3s --script stutter.lua --out demo.wav`,
	RunE: runRender,
}

var (
	renderOut       string
	renderOutDir    string
	renderSource    string
	renderScript    string
	renderLength    int
	renderDuration  time.Duration
	renderFreezeAt  time.Duration
	renderReleaseAt time.Duration
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (single input or synthetic source)")
	renderCmd.Flags().StringVar(&renderOutDir, "out-dir", "", "output directory for batch renders (default: next to each input)")
	renderCmd.Flags().StringVar(&renderSource, "source", "chord", "synthetic source when no input is given (sine/noise/pulse/chord)")
	renderCmd.Flags().StringVar(&renderScript, "script", "", "Lua automation script (overrides automation.script)")
	renderCmd.Flags().IntVarP(&renderLength, "length", "l", 0, "loop length in samples (default: crash.length)")
	renderCmd.Flags().DurationVar(&renderDuration, "duration", 5*time.Second, "length of the synthetic render")
	renderCmd.Flags().DurationVar(&renderFreezeAt, "freeze-at", -1, "freeze at this offset (e.g. 1.5s)")
	renderCmd.Flags().DurationVar(&renderReleaseAt, "release-at", -1, "release the freeze at this offset")
	renderCmd.Flags().String("dither", "", "WAV output dither (none/rectangular/triangular)")
	_ = viper.BindPFlag("render.dither", renderCmd.Flags().Lookup("dither"))
}

// renderJob is one input/output pair. An empty in renders the synthetic
// source.
type renderJob struct {
	in  string
	out string
}

type renderResult struct {
	out    string
	frames int
	report analysis.Report
}

func runRender(cmd *cobra.Command, args []string) error {
	jobs, err := planRender(args, renderOut, renderOutDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	script := renderScript
	if script == "" {
		script = cfg.Automation.Script
	}

	opts := renderOptions{
		source:    renderSource,
		script:    script,
		length:    lengthOr(renderLength, cfg),
		duration:  renderDuration,
		freezeAt:  renderFreezeAt,
		releaseAt: renderReleaseAt,
	}

	results := make([]renderResult, len(jobs))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(cfg.Render.Workers)

	for i, job := range jobs {
		p.Go(func(ctx context.Context) error {
			res, err := render(ctx, cfg, job, opts)
			if err != nil {
				logger.Error("render failed", "input", job.in, "error", err)
				return fmt.Errorf("%s: %w", job.name(), err)
			}
			results[i] = res
			logger.Info("rendered", "output", res.out, "frames", res.frames)
			return nil
		})
	}

	err = p.Wait()

	w := cmd.OutOrStdout()
	for _, res := range results {
		if res.out != "" {
			fmt.Fprintf(w, "%s: %s\n", res.out, res.report)
		}
	}

	return err
}

func (j renderJob) name() string {
	if j.in == "" {
		return "synthetic source"
	}
	return j.in
}

// planRender maps inputs to outputs.
func planRender(inputs []string, out, outDir string) ([]renderJob, error) {
	switch {
	case len(inputs) == 0:
		if out == "" {
			return nil, errors.New("--out is required when rendering the synthetic source")
		}
		return []renderJob{{out: out}}, nil

	case out != "":
		if len(inputs) > 1 {
			return nil, errors.New("--out takes a single input; use --out-dir for batches")
		}
		if out == inputs[0] {
			return nil, fmt.Errorf("refusing to overwrite input %s", out)
		}
		return []renderJob{{in: inputs[0], out: out}}, nil
	}

	jobs := make([]renderJob, len(inputs))
	seen := make(map[string]string, len(inputs))

	for i, in := range inputs {
		o := derivedOutput(in, outDir)
		if prev, dup := seen[o]; dup {
			return nil, fmt.Errorf("inputs %s and %s both render to %s", prev, in, o)
		}
		seen[o] = in
		jobs[i] = renderJob{in: in, out: o}
	}

	return jobs, nil
}

// derivedOutput names the output of in: "<dir>/<base>-crash<ext>".
func derivedOutput(in, outDir string) string {
	ext := filepath.Ext(in)
	base := strings.TrimSuffix(filepath.Base(in), ext) + "-crash" + ext

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(in)
	}

	return filepath.Join(dir, base)
}

type renderOptions struct {
	source    string
	script    string
	length    int
	duration  time.Duration
	freezeAt  time.Duration
	releaseAt time.Duration
}

func render(ctx context.Context, c *config.Config, job renderJob, opts renderOptions) (renderResult, error) {
	var (
		src        host.Source
		sampleRate = c.Audio.SampleRate
		channels   = c.Audio.Channels
	)

	if job.in == "" {
		pc := streamConfig(c, sampleRate, channels)
		s, err := synthSource(opts.source, pc)
		if err != nil {
			return renderResult{}, err
		}
		src = host.Limit(s, pc.SamplesFor(opts.duration.Seconds()))
	} else {
		s, a, err := fileSource(job.in, false)
		if err != nil {
			return renderResult{}, err
		}
		src, sampleRate, channels = s, a.SampleRate, a.NumChannels()
	}

	pc := streamConfig(c, sampleRate, channels)

	fx, err := newCrash(c, pc, opts.length)
	if err != nil {
		return renderResult{}, err
	}

	ctrl := host.NewControls(opts.length, c.Crash.Freeze)

	var automators []host.Automator

	events, err := freezeEvents(opts.freezeAt, opts.releaseAt, pc.SampleRate)
	if err != nil {
		return renderResult{}, err
	}
	if len(events) > 0 {
		sched, err := host.NewSchedule(pc.BlockSize, events...)
		if err != nil {
			return renderResult{}, err
		}
		automators = append(automators, sched)
	}

	// Each job gets its own interpreter; Lua states are single-threaded.
	if opts.script != "" {
		s, err := automation.Load(opts.script, pc)
		if err != nil {
			return renderResult{}, err
		}
		defer s.Close()
		automators = append(automators, s)
	}

	engineOpts := []host.EngineOption{host.WithLogger(logger.With("input", job.name()))}
	if len(automators) > 0 {
		engineOpts = append(engineOpts, host.WithAutomator(host.Chain(automators...)))
	}

	eng, err := host.NewEngine(pc, fx, ctrl, src, engineOpts...)
	if err != nil {
		return renderResult{}, err
	}

	out := &codec.Audio{SampleRate: sampleRate, Channels: make([][]float64, channels)}
	err = eng.Render(ctx, func(block [][]float64, n int) error {
		for ch := range out.Channels {
			out.Channels[ch] = append(out.Channels[ch], block[ch][:n]...)
		}
		return nil
	})
	if err != nil {
		return renderResult{}, err
	}

	if out.Frames() == 0 {
		return renderResult{}, errors.New("nothing rendered")
	}

	d, err := dither.ParseType(c.Render.Dither)
	if err != nil {
		return renderResult{}, err
	}

	if err := codec.WriteFile(job.out, out, codec.Options{Bitrate: c.Render.Bitrate, Dither: d}); err != nil {
		return renderResult{}, err
	}

	report, err := analyzeLoop(fx)
	if err != nil {
		return renderResult{}, err
	}

	return renderResult{out: job.out, frames: out.Frames(), report: report}, nil
}
