// Package backdrop is the effect engine behind the animated particle
// backdrop: effect definitions, per-frame simulation, connection lines, frame
// pacing, visibility and the fade/rotation lifecycle.
package backdrop

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

var (
	ErrMissingBackend       = errors.New("rendering backend unavailable")
	ErrTransitionInProgress = errors.New("effect transition in progress")
	ErrNotInitialized       = errors.New("engine not initialized")
	ErrEmptyCatalog         = errors.New("effect catalog is empty")
)

// Options tunes an Engine. Zero fields take the package defaults.
type Options struct {
	TargetFPS      int
	RotateInterval time.Duration
	FadeOut        time.Duration
	FadeIn         time.Duration
	Seed           uint64
	Logger         *slog.Logger

	// PointerSmoothing is the fraction of the remaining distance the
	// smoothed pointer covers per frame.
	PointerSmoothing float64
}

func (o Options) withDefaults() Options {
	if o.TargetFPS <= 0 {
		o.TargetFPS = TargetFPS
	}
	if o.RotateInterval <= 0 {
		o.RotateInterval = RotateInterval
	}
	if o.FadeOut <= 0 {
		o.FadeOut = FadeOutDelay
	}
	if o.FadeIn <= 0 {
		o.FadeIn = FadeInDelay
	}
	if o.PointerSmoothing <= 0 || o.PointerSmoothing > 1 {
		o.PointerSmoothing = PointerSmoothing
	}
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// pipeline is everything one effect owns while it is active.
type pipeline struct {
	index int
	def   *Definition
	state *ParticleState
	lines *LineBuffer
	clock Clock
}

// Snapshot is the read-only view offered to a selector control.
type Snapshot struct {
	Enabled       bool
	AutoRotate    bool
	ActiveEffect  int
	Transitioning bool
	HostVisible   bool
	Running       bool
	Catalog       []Entry
}

// Engine runs the backdrop: it owns the active effect pipeline, the frame
// loop and the lifecycle state, and drives a Renderer.
type Engine struct {
	opts    Options
	catalog Catalog
	sched   *Scheduler
	bus     *EventBus
	backend Backend
	store   Store
	log     *slog.Logger
	rng     *Rand

	renderer Renderer
	gov      *FrameGovernor
	vis      VisibilityController
	life     *Lifecycle
	pipe     *pipeline
	pointer  Pointer
	subs     []Subscription

	frameReq    Handle
	frame       Frame
	frames      uint64
	initialized bool

	// hostKnown is set once the host visibility has been assumed or
	// reported, so a re-Initialize keeps the last known value.
	hostKnown bool
}

// New returns an engine for catalog. Nothing is allocated on the backend
// until Initialize.
func New(catalog Catalog, sched *Scheduler, bus *EventBus, backend Backend, store Store, opts Options) *Engine {
	opts = opts.withDefaults()
	if bus == nil {
		bus = NewEventBus()
	}
	e := &Engine{
		opts:    opts,
		catalog: catalog,
		sched:   sched,
		bus:     bus,
		backend: backend,
		store:   store,
		log:     opts.Logger,
		rng:     NewRand(opts.Seed),
		gov:     NewFrameGovernor(opts.TargetFPS),
	}
	e.pointer.Smoothing = opts.PointerSmoothing
	return e
}

// Bus returns the event bus the engine listens and reports on.
func (e *Engine) Bus() *EventBus { return e.bus }

// Frames returns the number of frames simulated and drawn so far.
func (e *Engine) Frames() uint64 { return e.frames }

// Lifecycle exposes the transition state machine.
func (e *Engine) Lifecycle() *Lifecycle { return e.life }

// Initialize creates the renderer, restores preferences, builds the first
// pipeline and starts the loop if allowed. On error nothing is left behind.
func (e *Engine) Initialize() error {
	if e.initialized {
		return nil
	}
	if len(e.catalog) == 0 {
		return ErrEmptyCatalog
	}
	if e.backend == nil {
		e.log.Error("backdrop disabled", "err", ErrMissingBackend)
		return ErrMissingBackend
	}
	r, err := e.backend()
	if err != nil || r == nil {
		e.log.Error("backdrop disabled", "err", err)
		if err == nil {
			return ErrMissingBackend
		}
		return fmt.Errorf("%w: %w", ErrMissingBackend, err)
	}
	e.renderer = r

	prefs := LoadPreferences(e.store, len(e.catalog))
	if prefs.Recovered {
		e.log.Debug("stored preferences invalid, using defaults",
			"effect", prefs.Effect, "auto_rotate", prefs.AutoRotate)
	}

	e.life = newLifecycle(e.sched, e, e.bus, e.log, len(e.catalog), e.opts)
	if err := e.life.activate(prefs.Effect); err != nil {
		e.teardownPipeline()
		e.renderer.Destroy()
		e.renderer = nil
		e.life = nil
		return fmt.Errorf("initial effect: %w", err)
	}

	e.subs = append(e.subs,
		e.bus.Subscribe(EventHostVisibility, func(ev Event) {
			e.setHostVisible(ev.On)
		}),
		e.bus.Subscribe(EventPointerMove, func(ev Event) {
			e.pointer.SetTarget(ev.X, ev.Y)
		}),
	)

	e.renderer.SetOpacity(1)
	e.renderer.SetHidden(!prefs.Enabled)
	e.life.SetAutoRotate(prefs.AutoRotate)
	e.initialized = true

	e.log.Info("backdrop initialized",
		"effect", e.catalog[e.life.Active()].Name,
		"enabled", prefs.Enabled,
		"auto_rotate", prefs.AutoRotate,
		"fps", e.opts.TargetFPS)

	if !e.hostKnown {
		e.vis.hostVisible = true
		e.hostKnown = true
	}
	if e.vis.SetUserEnabled(prefs.Enabled) {
		e.startLoop()
	}
	return nil
}

// Teardown cancels every pending callback, detaches all listeners and then
// releases renderer resources. The engine can be initialized again.
func (e *Engine) Teardown() {
	if !e.initialized {
		return
	}
	e.sched.Cancel(e.frameReq)
	e.frameReq = 0
	e.vis.halt()
	e.life.stop()
	for _, s := range e.subs {
		e.bus.Unsubscribe(s)
	}
	e.subs = nil

	e.teardownPipeline()
	e.renderer.Destroy()
	e.renderer = nil
	e.initialized = false
	e.log.Info("backdrop torn down", "frames", e.frames)
}

// SetEffect shows a fixed effect and turns auto-rotation off.
func (e *Engine) SetEffect(index int) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if e.life.Transitioning() {
		e.log.Debug("effect selection rejected", "requested", index)
		return ErrTransitionInProgress
	}
	index = wrapIndex(index, len(e.catalog))
	e.life.SetAutoRotate(false)
	e.persist(PrefEffect, encodeEffectPref(false, index))
	return e.life.SwitchTo(index)
}

// AdvanceEffect moves to the next effect in catalog order.
func (e *Engine) AdvanceEffect() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	next := wrapIndex(e.life.Active()+1, len(e.catalog))
	if err := e.life.SwitchTo(next); err != nil {
		return err
	}
	if !e.life.AutoRotate() {
		e.persist(PrefEffect, encodeEffectPref(false, next))
	}
	return nil
}

// SetAutoRotate toggles periodic advancing. Turning it off pins the current
// effect.
func (e *Engine) SetAutoRotate(on bool) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	e.life.SetAutoRotate(on)
	e.persist(PrefEffect, encodeEffectPref(on, e.life.Active()))
	return nil
}

// SetEnabled is the user toggle. Disabling hides the container and lets the
// in-flight frame finish; enabling restarts the loop if the host is visible.
func (e *Engine) SetEnabled(on bool) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	e.persist(PrefEnabled, strconv.FormatBool(on))
	e.renderer.SetHidden(!on)
	e.log.Info("backdrop toggled", "enabled", on)
	if e.vis.SetUserEnabled(on) {
		e.startLoop()
	}
	return nil
}

// SetHostVisible reports host visibility, as EventHostVisibility does.
func (e *Engine) SetHostVisible(visible bool) {
	e.bus.Emit(Event{Type: EventHostVisibility, On: visible})
}

func (e *Engine) setHostVisible(visible bool) {
	e.log.Debug("host visibility changed", "visible", visible)
	if e.vis.SetHostVisible(visible) {
		e.startLoop()
	}
}

// Snapshot reports the current state for a selector control.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Enabled:     e.vis.userEnabled,
		HostVisible: e.vis.hostVisible,
		Running:     e.vis.running,
		Catalog:     e.catalog.Entries(),
	}
	if e.life != nil {
		s.AutoRotate = e.life.AutoRotate()
		s.ActiveEffect = e.life.Active()
		s.Transitioning = e.life.Transitioning()
	}
	return s
}

func (e *Engine) persist(key, value string) {
	if e.store == nil {
		return
	}
	if err := e.store.Set(key, value); err != nil {
		e.log.Warn("saving preference failed", "key", key, "err", err)
	}
}

// fade implements pipelineHost.
func (e *Engine) fade(alpha float64) {
	if e.renderer != nil {
		e.renderer.SetOpacity(alpha)
	}
}

// swap implements pipelineHost: it releases the active pipeline completely
// before building the one for index.
func (e *Engine) swap(index int) error {
	e.teardownPipeline()

	def := e.catalog.At(index)
	p := &pipeline{
		index: index,
		def:   def,
		state: def.Initialize(NewRand(e.rng.NextU64())),
		lines: NewLineBuffer(def.MaxConnections),
	}
	if err := e.renderer.Attach(def, p.state, p.lines); err != nil {
		p.state.Release()
		p.lines.Release()
		return fmt.Errorf("attach %q: %w", def.Name, err)
	}
	p.clock.Start(e.sched.Now())
	e.pipe = p
	e.log.Debug("effect pipeline ready",
		"effect", def.Name,
		"particles", def.ParticleCount,
		"max_connections", def.MaxConnections,
		"policy", def.Policy)
	return nil
}

func (e *Engine) teardownPipeline() {
	p := e.pipe
	if p == nil {
		return
	}
	if e.renderer != nil {
		e.renderer.Detach()
	}
	p.state.Release()
	p.lines.Release()
	e.pipe = nil
}
