// Package desktop hosts the backdrop engine in a glfw window. It owns the OS
// thread, translates window callbacks into engine events and drives the
// cooperative scheduler from the window loop.
package desktop

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"backdrop/internal/backdrop"
	"backdrop/internal/config"
	"backdrop/internal/render"
)

const (
	// hostTick is how long the loop waits for events while a frame request
	// is pending but the last one was not drawn.
	hostTick = 0.005
	// idleWait caps any single wait.
	idleWait = 0.25
)

const (
	minWait  = 0.001
	msPerSec = 1000.0
)

// Options configures Run.
type Options struct {
	Window config.WindowConfig
	Engine backdrop.Options
	Store  backdrop.Store
	Logger *slog.Logger

	// OnBus is called with the engine's event bus before Initialize, so
	// listeners like the audio cue see the first activation.
	OnBus func(*backdrop.EventBus)
}

// Run opens the window and runs the backdrop until the window is closed,
// Escape is pressed or ctx is cancelled. It must be called from the main
// goroutine. Failing to open a GL 4.1 context matches
// backdrop.ErrMissingBackend.
func Run(ctx context.Context, opts Options) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	window, err := initWindow(opts.Window)
	if err != nil {
		return errors.Join(backdrop.ErrMissingBackend, err)
	}
	defer glfw.Terminate()
	defer window.Destroy()

	fbW, fbH := window.GetFramebufferSize()
	var gfx *render.GL
	backend := func() (backdrop.Renderer, error) {
		r, err := render.New(log, fbW, fbH, opts.Engine.TargetFPS)
		if err != nil {
			return nil, err
		}
		gfx = r
		return r, nil
	}

	sched := backdrop.NewScheduler()
	bus := backdrop.NewEventBus()
	if opts.OnBus != nil {
		opts.OnBus(bus)
	}
	eng := backdrop.New(backdrop.DefaultCatalog(), sched, bus, backend, opts.Store, opts.Engine)

	start := glfw.GetTime()
	now := func() float64 { return (glfw.GetTime() - start) * msPerSec }

	if err := eng.Initialize(); err != nil {
		return err
	}
	defer eng.Teardown()

	resize := bus.Subscribe(backdrop.EventResize, func(ev backdrop.Event) {
		gfx.Resize(int(ev.X), int(ev.Y))
	})
	defer bus.Unsubscribe(resize)

	window.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		eng.SetHostVisible(!iconified)
	})
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		bus.Emit(backdrop.Event{Type: backdrop.EventResize, X: float64(width), Y: float64(height)})
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		winW, winH := w.GetSize()
		px, py := normalizeCursor(x, y, winW, winH)
		bus.Emit(backdrop.Event{Type: backdrop.EventPointerMove, X: px, Y: py})
	})

	stop := context.AfterFunc(ctx, glfw.PostEmptyEvent)
	defer stop()

	in := NewInput()
	var acts []action
	for !window.ShouldClose() {
		if ctx.Err() != nil {
			log.Info("shutting down", "reason", context.Cause(ctx))
			break
		}

		sched.Tick(now())
		if gfx.Drawn() {
			window.SwapBuffers()
			glfw.PollEvents()
		} else {
			glfw.WaitEventsTimeout(waitFor(sched, now()))
		}

		acts = in.Poll(window, acts)
		for _, a := range acts {
			if a.kind == actQuit {
				window.SetShouldClose(true)
				continue
			}
			if err := apply(eng, a); err != nil {
				if errors.Is(err, backdrop.ErrTransitionInProgress) {
					log.Debug("key ignored during transition")
					continue
				}
				log.Warn("key action failed", "err", err)
			}
		}
	}

	log.Info("backdrop stopped", "frames", eng.Frames())
	return nil
}

// waitFor returns how long, in seconds, the loop may block on window events
// before the scheduler needs another tick at time now (ms).
func waitFor(s *backdrop.Scheduler, now float64) float64 {
	if s.FramePending() {
		return hostTick
	}
	w := idleWait
	if due, ok := s.NextTimer(); ok {
		if d := (due - now) / msPerSec; d < w {
			w = d
		}
	}
	if w < minWait {
		w = minWait
	}
	return w
}
