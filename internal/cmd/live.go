package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/cwbudde/xpcrash/dsp/analysis"
	"github.com/cwbudde/xpcrash/dsp/effects"
	"github.com/cwbudde/xpcrash/internal/config"
	"github.com/cwbudde/xpcrash/internal/host"
	"github.com/cwbudde/xpcrash/internal/playback"
	"github.com/cwbudde/xpcrash/internal/tui"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Play through the effect in real time",
	Long: `Live loops a file or a synthetic signal through the effect to the default
audio device. On a terminal it shows an interactive control panel; otherwise
it plays until interrupted.

Edits to the config file apply while playing: crash.length and crash.freeze
are picked up on save.

Examples:
  xpcrash live --source pulse
  xpcrash live --input drums.wav
  xpcrash live --input drums.wav > /dev/null   # headless`,
	Args: cobra.NoArgs,
	RunE: runLive,
}

var (
	liveSource string
	liveInput  string
)

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().StringVar(&liveSource, "source", "chord", "synthetic source (sine/noise/pulse/chord)")
	liveCmd.Flags().StringVarP(&liveInput, "input", "i", "", "audio file to loop instead of the synthetic source")
}

func runLive(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		src        host.Source
		sampleRate = cfg.Audio.SampleRate
		channels   = cfg.Audio.Channels
	)

	if liveInput != "" {
		s, a, err := fileSource(liveInput, true)
		if err != nil {
			return err
		}
		src, sampleRate, channels = s, a.SampleRate, a.NumChannels()
	} else {
		s, err := synthSource(liveSource, streamConfig(cfg, sampleRate, channels))
		if err != nil {
			return err
		}
		src = s
	}

	pc := streamConfig(cfg, sampleRate, channels)

	fx, err := newCrash(cfg, pc, cfg.Crash.Length)
	if err != nil {
		return err
	}

	ctrl := host.NewControls(cfg.Crash.Length, cfg.Crash.Freeze)

	eng, err := host.NewEngine(pc, fx, ctrl, src, host.WithLogger(logger))
	if err != nil {
		return err
	}

	player, err := playback.New(playback.Options{
		SampleRate: sampleRate,
		Channels:   channels,
		BufferSize: 2 * pc.BlockSize,
	})
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	defer player.Close()

	if viper.ConfigFileUsed() != "" {
		config.Watch(viper.GetViper(), func(c *config.Config) {
			applyLiveConfig(ctrl, c)
			logger.Info("config reloaded", "length", c.Crash.Length, "freeze", c.Crash.Freeze)
		}, func(err error) {
			logger.Warn("config reload rejected", "error", err)
		})
	}

	an, err := liveAnalyzer(pc.SampleRate)
	if err != nil {
		return err
	}

	// From here on fx belongs to the audio goroutine; read state via eng.
	if err := player.Start(eng); err != nil {
		return err
	}
	logger.Info("playing", "sample_rate", sampleRate, "channels", channels, "length", eng.Length())

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		<-ctx.Done()
		return player.Err()
	}

	prog := tea.NewProgram(tui.New(ctrl, eng, an), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	return player.Err()
}

// liveAnalyzer sizes the frame for the longest loop the controls can reach.
func liveAnalyzer(sampleRate float64) (*analysis.Analyzer, error) {
	return newAnalyzer(sampleRate, effects.MaxCrashLength)
}

// applyLiveConfig carries the hot-reloadable settings over to ctrl.
func applyLiveConfig(ctrl *host.Controls, c *config.Config) {
	ctrl.SetLength(c.Crash.Length)
	ctrl.SetFreeze(c.Crash.Freeze)
}
