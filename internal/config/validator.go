package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cwbudde/xpcrash/dsp/dither"
	"github.com/cwbudde/xpcrash/dsp/effects"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "crash.length")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidDitherTypes returns the accepted render.dither names
func ValidDitherTypes() []string {
	names := make([]string, 0, len(dither.Types))
	for _, t := range dither.Types {
		names = append(names, t.String())
	}
	return names
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	errs = append(errs, c.validateAudio()...)
	errs = append(errs, c.validateCrash()...)
	errs = append(errs, c.validateRender()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateAudio() []ValidationError {
	var errs []ValidationError

	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		errs = append(errs, ValidationError{
			Field:   "audio.sample_rate",
			Value:   c.Audio.SampleRate,
			Message: "must be between 8000 and 192000",
		})
	}

	if c.Audio.BlockSize < 16 || c.Audio.BlockSize > 8192 {
		errs = append(errs, ValidationError{
			Field:   "audio.block_size",
			Value:   c.Audio.BlockSize,
			Message: "must be between 16 and 8192",
		})
	}

	if c.Audio.Channels < 1 || c.Audio.Channels > 8 {
		errs = append(errs, ValidationError{
			Field:   "audio.channels",
			Value:   c.Audio.Channels,
			Message: "must be between 1 and 8",
		})
	}

	return errs
}

func (c *Config) validateCrash() []ValidationError {
	if c.Crash.Length < effects.MinCrashLength || c.Crash.Length > effects.MaxCrashLength {
		return []ValidationError{{
			Field:   "crash.length",
			Value:   c.Crash.Length,
			Message: fmt.Sprintf("must be between %d and %d", effects.MinCrashLength, effects.MaxCrashLength),
		}}
	}
	return nil
}

func (c *Config) validateRender() []ValidationError {
	var errs []ValidationError

	if c.Render.Bitrate < 6000 || c.Render.Bitrate > 510000 {
		errs = append(errs, ValidationError{
			Field:   "render.bitrate",
			Value:   c.Render.Bitrate,
			Message: "must be between 6000 and 510000",
		})
	}

	if c.Render.Workers < 1 {
		errs = append(errs, ValidationError{
			Field:   "render.workers",
			Value:   c.Render.Workers,
			Message: "must be at least 1",
		})
	}

	if _, err := dither.ParseType(c.Render.Dither); err != nil {
		errs = append(errs, ValidationError{
			Field:   "render.dither",
			Value:   c.Render.Dither,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidDitherTypes(), ", ")),
		})
	}

	return errs
}

func (c *Config) validateLogging() []ValidationError {
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		return []ValidationError{{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		}}
	}
	return nil
}
