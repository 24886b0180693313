package backdrop

import (
	"log/slog"
	"time"
)

type TransitionState int

const (
	StateSteady    TransitionState = iota
	StateFadingOut                 // container fading to zero opacity
	StateSwapping                  // old pipeline torn down, new one being built
	StateFadingIn                  // new pipeline up, waiting to fade back in
)

func (s TransitionState) String() string {
	switch s {
	case StateSteady:
		return "steady"
	case StateFadingOut:
		return "fading-out"
	case StateSwapping:
		return "swapping"
	case StateFadingIn:
		return "fading-in"
	}
	return "unknown"
}

// pipelineHost is what the lifecycle drives during a transition.
type pipelineHost interface {
	fade(alpha float64)
	swap(index int) error
}

// Lifecycle owns the active effect index, the fade transition between
// effects and the auto-rotation timer.
type Lifecycle struct {
	sched *Scheduler
	host  pipelineHost
	bus   *EventBus
	log   *slog.Logger
	size  int

	fadeOut     time.Duration
	fadeIn      time.Duration
	rotateEvery time.Duration

	active     int
	target     int
	state      TransitionState
	autoRotate bool

	fadeTimer   Handle
	rotateTimer Handle
}

func newLifecycle(sched *Scheduler, host pipelineHost, bus *EventBus, log *slog.Logger, size int, opts Options) *Lifecycle {
	return &Lifecycle{
		sched:       sched,
		host:        host,
		bus:         bus,
		log:         log,
		size:        size,
		fadeOut:     opts.FadeOut,
		fadeIn:      opts.FadeIn,
		rotateEvery: opts.RotateInterval,
	}
}

// Active returns the index of the effect currently shown.
func (l *Lifecycle) Active() int { return l.active }

// State returns the transition state.
func (l *Lifecycle) State() TransitionState { return l.state }

// Transitioning reports whether a switch is in flight.
func (l *Lifecycle) Transitioning() bool { return l.state != StateSteady }

// AutoRotate reports whether the rotation timer is armed.
func (l *Lifecycle) AutoRotate() bool { return l.autoRotate }

// activate builds the pipeline for index immediately, without a fade.
func (l *Lifecycle) activate(index int) error {
	index = wrapIndex(index, l.size)
	if err := l.host.swap(index); err != nil {
		return err
	}
	l.active = index
	l.target = index
	l.state = StateSteady
	l.bus.Emit(Event{Type: EventEffectActivated, Data: index})
	return nil
}

// SwitchTo starts a fade transition to index (wrapped into the catalog).
// Switching to the active effect is a no-op; switching while another
// transition is in flight is rejected.
func (l *Lifecycle) SwitchTo(index int) error {
	if l.Transitioning() {
		l.log.Debug("effect switch rejected", "requested", index, "state", l.state, "target", l.target)
		return ErrTransitionInProgress
	}
	index = wrapIndex(index, l.size)
	if index == l.active {
		return nil
	}

	l.state = StateFadingOut
	l.target = index
	l.host.fade(0)
	l.bus.Emit(Event{Type: EventTransitionStarted, Data: index})
	l.log.Debug("effect transition started", "from", l.active, "to", index)

	l.fadeTimer = l.sched.AfterFunc(l.fadeOut, func() { l.swap(index) })
	return nil
}

func (l *Lifecycle) swap(index int) {
	l.state = StateSwapping
	if err := l.host.swap(index); err != nil {
		// The previous pipeline is already gone; keep the index so the next
		// switch starts from a consistent place.
		l.log.Error("effect init failed", "effect", index, "err", err)
	}
	l.active = index
	l.state = StateFadingIn
	l.bus.Emit(Event{Type: EventEffectActivated, Data: index})

	l.fadeTimer = l.sched.AfterFunc(l.fadeIn, func() {
		l.fadeTimer = 0
		l.host.fade(1)
		l.state = StateSteady
		l.log.Debug("effect transition finished", "effect", index)
	})
}

// Advance switches to the next effect in catalog order.
func (l *Lifecycle) Advance() error {
	return l.SwitchTo(l.active + 1)
}

// SetAutoRotate arms or disarms the rotation timer.
func (l *Lifecycle) SetAutoRotate(on bool) {
	l.autoRotate = on
	if !on {
		l.sched.Cancel(l.rotateTimer)
		l.rotateTimer = 0
		return
	}
	if l.rotateTimer != 0 {
		return
	}
	l.rotateTimer = l.sched.Every(l.rotateEvery, func() {
		if err := l.Advance(); err != nil {
			l.log.Debug("auto-rotate skipped", "err", err)
		}
	})
}

// stop cancels every pending lifecycle timer.
func (l *Lifecycle) stop() {
	l.sched.Cancel(l.fadeTimer)
	l.fadeTimer = 0
	l.sched.Cancel(l.rotateTimer)
	l.rotateTimer = 0
	l.state = StateSteady
}
