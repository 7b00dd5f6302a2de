package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. XPCRASH_CRASH_LENGTH.
const EnvPrefix = "XPCRASH"

// Config represents the complete xpcrash configuration
type Config struct {
	Audio      AudioConfig      `mapstructure:"audio"`
	Crash      CrashConfig      `mapstructure:"crash"`
	Render     RenderConfig     `mapstructure:"render"`
	Automation AutomationConfig `mapstructure:"automation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// AudioConfig describes the processing stream
type AudioConfig struct {
	// SampleRate in Hz
	SampleRate int `mapstructure:"sample_rate"`
	// BlockSize is the number of frames per processing block; controls
	// change only at block boundaries.
	BlockSize int `mapstructure:"block_size"`
	// Channels is the number of independent loop buffers
	Channels int `mapstructure:"channels"`
}

// CrashConfig holds the effect controls
type CrashConfig struct {
	// Length is the loop length in samples (128..65536)
	Length int `mapstructure:"length"`
	// Freeze starts the effect frozen
	Freeze bool `mapstructure:"freeze"`
	// LegacyWrap reproduces the length-1 wrap period of older releases
	LegacyWrap bool `mapstructure:"legacy_wrap"`
}

// RenderConfig controls offline rendering
type RenderConfig struct {
	// Bitrate for Opus output in bits per second
	Bitrate int `mapstructure:"bitrate"`
	// Workers is the number of files rendered concurrently
	Workers int `mapstructure:"workers"`
	// Dither for WAV output: none, rectangular or triangular
	Dither string `mapstructure:"dither"`
}

// AutomationConfig points at an optional Lua automation script
type AutomationConfig struct {
	Script string `mapstructure:"script"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// File receives JSON logs; empty logs text to stderr
	File string `mapstructure:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 48000,
			BlockSize:  512,
			Channels:   2,
		},
		Crash: CrashConfig{
			Length: 1024,
		},
		Render: RenderConfig{
			Bitrate: 128000,
			Workers: 2,
			Dither:  "none",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every default value with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("audio.sample_rate", defaults.Audio.SampleRate)
	v.SetDefault("audio.block_size", defaults.Audio.BlockSize)
	v.SetDefault("audio.channels", defaults.Audio.Channels)

	v.SetDefault("crash.length", defaults.Crash.Length)
	v.SetDefault("crash.freeze", defaults.Crash.Freeze)
	v.SetDefault("crash.legacy_wrap", defaults.Crash.LegacyWrap)

	v.SetDefault("render.bitrate", defaults.Render.Bitrate)
	v.SetDefault("render.workers", defaults.Render.Workers)
	v.SetDefault("render.dither", defaults.Render.Dither)

	v.SetDefault("automation.script", defaults.Automation.Script)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)
}

// Init prepares v: defaults, environment overrides and the config file.
// cfgFile overrides the search path. A missing config file is not an error
// unless cfgFile names it explicitly.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	// XPCRASH_CRASH_LENGTH for crash.length
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	return nil
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Watch calls fn with the reloaded configuration every time the config
// file changes on disk. Invalid edits are reported through onErr and the
// previous configuration stays in effect.
func Watch(v *viper.Viper, fn func(*Config), onErr func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		reload(v, e, fn, onErr)
	})
	v.WatchConfig()
}

func reload(v *viper.Viper, e fsnotify.Event, fn func(*Config), onErr func(error)) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}

	cfg, err := Load(v)
	if err != nil {
		if onErr != nil {
			onErr(fmt.Errorf("reload %s: %w", e.Name, err))
		}
		return
	}

	fn(cfg)
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "xpcrash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xpcrash"
	}
	return filepath.Join(home, ".config", "xpcrash")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
