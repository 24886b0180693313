// Package config provides TOML-based configuration for the backdrop viewer.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"backdrop/internal/backdrop"
)

// Duration is a time.Duration written as a Go duration string in TOML,
// e.g. fade_out = "1s". Negative values are rejected.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	if v < 0 {
		return fmt.Errorf("duration %s is negative", v)
	}
	d.Duration = v
	return nil
}

// Config is the full configuration file.
type Config struct {
	Window WindowConfig `toml:"window"`
	Engine EngineConfig `toml:"engine"`
	Audio  AudioConfig  `toml:"audio"`
	Prefs  PrefsConfig  `toml:"prefs"`
	Log    LogConfig    `toml:"log"`
}

type WindowConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Title      string `toml:"title"`
	Fullscreen bool   `toml:"fullscreen"`
}

// EngineConfig tunes frame pacing and the effect lifecycle.
type EngineConfig struct {
	TargetFPS        int      `toml:"target_fps"`
	RotateInterval   Duration `toml:"rotate_interval"`
	FadeOut          Duration `toml:"fade_out"`
	FadeIn           Duration `toml:"fade_in"`
	PointerSmoothing float64  `toml:"pointer_smoothing"`
	// Seed fixes the particle RNG; 0 seeds from the clock.
	Seed uint64 `toml:"seed"`
}

type AudioConfig struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
}

// PrefsConfig locates the persisted user preferences. An empty path keeps
// preferences in memory only.
type PrefsConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Backdrop",
		},
		Engine: EngineConfig{
			TargetFPS:        backdrop.TargetFPS,
			RotateInterval:   Duration{backdrop.RotateInterval},
			FadeOut:          Duration{backdrop.FadeOutDelay},
			FadeIn:           Duration{backdrop.FadeInDelay},
			PointerSmoothing: backdrop.PointerSmoothing,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.35,
		},
		Prefs: PrefsConfig{
			Path: defaultPrefsPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Engine.TargetFPS < 1 || c.Engine.TargetFPS > 240 {
		errs = append(errs, fmt.Errorf("engine: target_fps %d out of range [1, 240]", c.Engine.TargetFPS))
	}
	if c.Engine.RotateInterval.Duration < time.Second {
		errs = append(errs, fmt.Errorf("engine: rotate_interval %s shorter than 1s", c.Engine.RotateInterval.Duration))
	}
	if c.Engine.FadeOut.Duration <= 0 || c.Engine.FadeIn.Duration <= 0 {
		errs = append(errs, errors.New("engine: fade_out and fade_in must be positive"))
	}
	if s := c.Engine.PointerSmoothing; s <= 0 || s > 1 {
		errs = append(errs, fmt.Errorf("engine: pointer_smoothing %v out of range (0, 1]", s))
	}
	if v := c.Audio.Volume; v < 0 || v > 1 {
		errs = append(errs, fmt.Errorf("audio: volume %v out of range [0, 1]", v))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	return errors.Join(errs...)
}

// EngineOptions converts the engine section for backdrop.New.
func (c *Config) EngineOptions(log *slog.Logger) backdrop.Options {
	return backdrop.Options{
		TargetFPS:        c.Engine.TargetFPS,
		RotateInterval:   c.Engine.RotateInterval.Duration,
		FadeOut:          c.Engine.FadeOut.Duration,
		FadeIn:           c.Engine.FadeIn.Duration,
		PointerSmoothing: c.Engine.PointerSmoothing,
		Seed:             c.Engine.Seed,
		Logger:           log,
	}
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q", l.Level)
}
