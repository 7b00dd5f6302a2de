// Package cmd implements the xpcrash command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwbudde/xpcrash/internal/config"
	"github.com/cwbudde/xpcrash/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "xpcrash",
	Short: "Loop-capture freeze effect",
	Long: `xpcrash records the most recent few milliseconds of audio per channel and,
when frozen, replays that loop forever: the stutter of a crashed Windows XP
machine.

Settings come from $XDG_CONFIG_HOME/xpcrash/config.yaml (or --config) and
XPCRASH_* environment variables; flags override both.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

var (
	cfgFile  string
	logLevel string

	initErr error
	cfg     *config.Config
	logger  = logging.NopLogger()
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/xpcrash/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug/info/warn/error)")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	initErr = config.Init(viper.GetViper(), cfgFile)
}

func setup(cmd *cobra.Command, _ []string) error {
	if initErr != nil {
		return initErr
	}

	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = c

	l, err := logging.New(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	logger = l.With("cmd", cmd.Name())

	logger.Debug("config loaded", "file", viper.ConfigFileUsed())

	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	_ = logger.Close()
}
