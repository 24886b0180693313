// Command backdrop shows the animated particle backdrop in a desktop window.
//
// Usage:
//
//	backdrop [flags]
//
// Flags:
//
//	--config string   Path to configuration file (default: $XDG_CONFIG_HOME/backdrop/config.toml)
//	--effect string   Start with a fixed effect index, or "auto" to rotate
//	--prefs string    Preferences file (overrides prefs.path)
//	--no-audio        Disable transition sounds
//	--verbose         Enable debug logging
//	--version         Print version and exit
//
// Keys: Space toggles the backdrop, Right or N advances, A toggles
// auto-rotation, 1-3 pick an effect, Escape quits.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"backdrop/internal/audio"
	"backdrop/internal/backdrop"
	"backdrop/internal/config"
	"backdrop/internal/desktop"
	"backdrop/internal/prefs"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		effect      = flag.String("effect", "", `Start with a fixed effect index, or "auto" to rotate`)
		prefsPath   = flag.String("prefs", "", "Preferences file (overrides prefs.path)")
		noAudio     = flag.Bool("no-audio", false, "Disable transition sounds")
		verbose     = flag.BoolP("verbose", "v", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("backdrop %s (%s)\n", version, commit)
		os.Exit(0)
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *prefsPath != "" {
		cfg.Prefs.Path = *prefsPath
	}
	if *noAudio {
		cfg.Audio.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	store := openStore(cfg.Prefs.Path, logger)
	if *effect != "" {
		v, err := parseEffect(*effect, len(backdrop.DefaultCatalog()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --effect: %v\n", err)
			os.Exit(2)
		}
		if err := store.Set(backdrop.PrefEffect, v); err != nil {
			logger.Warn("saving effect preference failed", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engineOpts := cfg.EngineOptions(logger)

	var cue *audio.Cue
	if cfg.Audio.Enabled {
		cue, err = audio.New(cfg.Audio.Volume, engineOpts.FadeOut, logger)
		if err != nil {
			logger.Warn("audio init failed (continuing without sound)", "err", err)
			cue = nil
		}
	}

	var bus *backdrop.EventBus
	err = desktop.Run(ctx, desktop.Options{
		Window: cfg.Window,
		Engine: engineOpts,
		Store:  store,
		Logger: logger,
		OnBus: func(b *backdrop.EventBus) {
			bus = b
			if cue != nil {
				cue.Attach(b)
			}
		},
	})
	if cue != nil && bus != nil {
		cue.Detach(bus)
	}

	switch {
	case errors.Is(err, backdrop.ErrMissingBackend):
		logger.Error("no usable OpenGL 4.1 context, backdrop disabled", "err", err)
	case err != nil:
		logger.Error("backdrop failed", "err", err)
		os.Exit(1)
	}
}

// openStore returns the YAML preference file, or an in-memory store when no
// path is configured or the file cannot be read.
func openStore(path string, log *slog.Logger) backdrop.Store {
	if path == "" {
		log.Debug("no preferences path, preferences will not persist")
		return backdrop.MemoryStore{}
	}
	s, err := prefs.Open(path, log)
	if err != nil {
		log.Warn("preferences unavailable, not persisting this run", "err", err)
		return backdrop.MemoryStore{}
	}
	log.Debug("preferences loaded", "path", s.Path())
	return s
}

// parseEffect validates a --effect value and returns its stored form.
func parseEffect(v string, n int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "auto" {
		return v, nil
	}
	idx, err := strconv.Atoi(v)
	if err != nil {
		return "", fmt.Errorf("%q is not an index or \"auto\"", v)
	}
	if idx < 0 || idx >= n {
		return "", fmt.Errorf("index %d out of range [0, %d)", idx, n)
	}
	return strconv.Itoa(idx), nil
}
