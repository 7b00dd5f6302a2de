package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

func newMemViper(t *testing.T, files map[string]string) *viper.Viper {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, body := range files {
		if err := afero.WriteFile(fs, name, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	v := viper.New()
	v.SetFs(fs)
	return v
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Audio.SampleRate != 48000 || cfg.Audio.BlockSize != 512 || cfg.Audio.Channels != 2 {
		t.Errorf("audio defaults = %+v", cfg.Audio)
	}
	if cfg.Crash.Length != 1024 || cfg.Crash.Freeze || cfg.Crash.LegacyWrap {
		t.Errorf("crash defaults = %+v", cfg.Crash)
	}
	if cfg.Render.Bitrate != 128000 || cfg.Render.Workers != 2 || cfg.Render.Dither != "none" {
		t.Errorf("render defaults = %+v", cfg.Render)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.File != "" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config invalid: %v", ValidationErrors(errs))
	}
}

func TestInitWithoutConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent")
	v := newMemViper(t, nil)

	if err := Init(v, ""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestInitReadsExplicitFile(t *testing.T) {
	path := filepath.Join("/etc", "xpcrash", "config.yaml")
	v := newMemViper(t, map[string]string{
		path: "crash:\n  length: 4096\n  freeze: true\naudio:\n  channels: 1\n",
	})

	if err := Init(v, path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crash.Length != 4096 || !cfg.Crash.Freeze || cfg.Audio.Channels != 1 {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("unset key lost its default: sample_rate = %d", cfg.Audio.SampleRate)
	}
}

func TestInitMissingExplicitFile(t *testing.T) {
	v := newMemViper(t, nil)

	if err := Init(v, "/missing.yaml"); err == nil {
		t.Fatal("Init() with missing explicit file expected error")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent")
	t.Setenv("XPCRASH_CRASH_LENGTH", "2048")
	t.Setenv("XPCRASH_LOGGING_LEVEL", "debug")

	v := newMemViper(t, nil)
	if err := Init(v, ""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crash.Length != 2048 || cfg.Logging.Level != "debug" {
		t.Errorf("env override not applied: %+v", cfg)
	}
}

func TestLoadReportsAllValidationErrors(t *testing.T) {
	v := newMemViper(t, map[string]string{
		"/c.yaml": "crash:\n  length: 64\nrender:\n  workers: 0\nlogging:\n  level: loud\n",
	})

	if err := Init(v, "/c.yaml"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, err := Load(v)

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Load() error = %v, want ValidationErrors", err)
	}
	if len(verrs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(verrs), verrs)
	}

	fields := []string{verrs[0].Field, verrs[1].Field, verrs[2].Field}
	want := []string{"crash.length", "render.workers", "logging.level"}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, fields[i], want[i])
		}
	}

	if !strings.HasPrefix(verrs.Error(), "3 validation errors:") {
		t.Errorf("Error() = %q", verrs.Error())
	}
}

func TestReloadCallsHandler(t *testing.T) {
	v := newMemViper(t, map[string]string{"/c.yaml": "crash:\n  length: 512\n"})
	if err := Init(v, "/c.yaml"); err != nil {
		t.Fatal(err)
	}

	var got *Config
	reload(v, fsnotify.Event{Name: "/c.yaml", Op: fsnotify.Write}, func(c *Config) { got = c }, nil)

	if got == nil || got.Crash.Length != 512 {
		t.Fatalf("handler got %+v", got)
	}

	got = nil
	reload(v, fsnotify.Event{Name: "/c.yaml", Op: fsnotify.Chmod}, func(c *Config) { got = c }, nil)
	if got != nil {
		t.Error("chmod event must not reload")
	}
}

func TestReloadReportsInvalidConfig(t *testing.T) {
	v := newMemViper(t, map[string]string{"/c.yaml": "crash:\n  length: 1\n"})
	if err := Init(v, "/c.yaml"); err != nil {
		t.Fatal(err)
	}

	var reloadErr error
	called := false
	reload(v, fsnotify.Event{Name: "/c.yaml", Op: fsnotify.Write},
		func(*Config) { called = true },
		func(err error) { reloadErr = err })

	if called {
		t.Error("handler called with invalid config")
	}
	if reloadErr == nil || !strings.Contains(reloadErr.Error(), "crash.length") {
		t.Errorf("reload error = %v", reloadErr)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	if got := ConfigDir(); got != filepath.Join("/tmp/xdg", "xpcrash") {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigFile(); got != filepath.Join("/tmp/xdg", "xpcrash", "config.yaml") {
		t.Errorf("ConfigFile() = %q", got)
	}
}
