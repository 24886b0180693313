package backdrop

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeRenderer struct {
	attached  []string
	detaches  int
	opacity   []float64
	hidden    bool
	times     []float32
	last      Frame
	destroyed bool
	attachErr error
}

func (r *fakeRenderer) Attach(def *Definition, ps *ParticleState, lines *LineBuffer) error {
	if r.attachErr != nil {
		return r.attachErr
	}
	r.attached = append(r.attached, def.Name)
	return nil
}

func (r *fakeRenderer) Detach()               { r.detaches++ }
func (r *fakeRenderer) SetOpacity(a float64)  { r.opacity = append(r.opacity, a) }
func (r *fakeRenderer) SetHidden(hidden bool) { r.hidden = hidden }
func (r *fakeRenderer) Destroy()              { r.destroyed = true }

func (r *fakeRenderer) Draw(f *Frame) {
	r.last = *f
	r.times = append(r.times, f.Plasma.Time)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, store Store, opts Options) (*Engine, *Scheduler, *fakeRenderer) {
	t.Helper()
	opts.Seed = 42
	opts.Logger = quietLogger()
	s := NewScheduler()
	r := &fakeRenderer{}
	e := New(DefaultCatalog(), s, nil, func() (Renderer, error) { return r, nil }, store, opts)
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e, s, r
}

func ms(d time.Duration) float64 { return float64(d / time.Millisecond) }

// run ticks the scheduler like a 60 Hz host until the clock reaches end.
func run(s *Scheduler, end float64) {
	for now := s.Now() + 16; now <= end; now += 16 {
		s.Tick(now)
	}
}

func TestInitializeFromStoredEffect(t *testing.T) {
	store := MemoryStore{PrefEffect: "1"}
	e, s, r := newTestEngine(t, store, Options{})

	snap := e.Snapshot()
	if snap.ActiveEffect != 1 || snap.AutoRotate {
		t.Fatalf("snapshot = %+v, want wave effect without auto-rotate", snap)
	}
	if diff := cmp.Diff([]string{"Wave Field"}, r.attached); diff != "" {
		t.Errorf("attached mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.NextTimer(); ok {
		t.Error("rotation timer armed for a fixed effect")
	}
	if !s.FramePending() || !snap.Running {
		t.Error("loop not started")
	}
}

func TestInitializeDefaults(t *testing.T) {
	e, s, r := newTestEngine(t, MemoryStore{}, Options{})

	snap := e.Snapshot()
	if snap.ActiveEffect != 0 || !snap.AutoRotate || !snap.Enabled {
		t.Fatalf("snapshot = %+v, want tunnel effect with auto-rotate", snap)
	}
	due, ok := s.NextTimer()
	if !ok || due != ms(RotateInterval) {
		t.Errorf("rotation due at %v (%v), want %v", due, ok, RotateInterval)
	}
	if r.hidden {
		t.Error("container hidden although enabled")
	}
	if diff := cmp.Diff([]float64{1}, r.opacity); diff != "" {
		t.Errorf("opacity mismatch (-want +got):\n%s", diff)
	}
}

func TestInitializeDisabled(t *testing.T) {
	e, s, r := newTestEngine(t, MemoryStore{PrefEnabled: "false"}, Options{})
	if s.FramePending() || e.Snapshot().Running {
		t.Error("loop started while disabled")
	}
	if !r.hidden {
		t.Error("container visible while disabled")
	}
}

func TestInitializeMissingBackend(t *testing.T) {
	cause := errors.New("no GL context")
	for name, backend := range map[string]Backend{
		"nil":   nil,
		"error": func() (Renderer, error) { return nil, cause },
	} {
		t.Run(name, func(t *testing.T) {
			s := NewScheduler()
			bus := NewEventBus()
			store := MemoryStore{}
			e := New(DefaultCatalog(), s, bus, backend, store, Options{Logger: quietLogger()})
			err := e.Initialize()
			if !errors.Is(err, ErrMissingBackend) {
				t.Fatalf("err = %v, want ErrMissingBackend", err)
			}
			if s.Len() != 0 {
				t.Errorf("%d callbacks scheduled", s.Len())
			}
			if bus.Count(EventHostVisibility) != 0 || bus.Count(EventPointerMove) != 0 {
				t.Error("listeners attached")
			}
			if len(store) != 0 {
				t.Errorf("store written: %v", store)
			}
			if err := e.SetEffect(1); !errors.Is(err, ErrNotInitialized) {
				t.Errorf("SetEffect err = %v, want ErrNotInitialized", err)
			}
		})
	}
}

func TestInitializeAttachFailure(t *testing.T) {
	cause := errors.New("shader compile failed")
	s := NewScheduler()
	bus := NewEventBus()
	r := &fakeRenderer{attachErr: cause}
	e := New(DefaultCatalog(), s, bus, func() (Renderer, error) { return r, nil }, MemoryStore{}, Options{Logger: quietLogger()})
	if err := e.Initialize(); !errors.Is(err, cause) {
		t.Fatalf("err = %v, want %v", err, cause)
	}
	if !r.destroyed {
		t.Error("renderer not destroyed")
	}
	if s.Len() != 0 || bus.Count(EventPointerMove) != 0 {
		t.Error("partial initialization left behind")
	}
}

func TestSetEffectWrapsIndex(t *testing.T) {
	store := MemoryStore{}
	e, s, r := newTestEngine(t, store, Options{})

	if err := e.SetEffect(5); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	if store[PrefEffect] != "2" {
		t.Errorf("stored %q, want \"2\"", store[PrefEffect])
	}
	if e.Snapshot().AutoRotate {
		t.Error("auto-rotate still on after a manual selection")
	}
	run(s, 1200)
	if got := e.Lifecycle().Active(); got != 2 {
		t.Errorf("active = %d, want 2", got)
	}
	if r.attached[len(r.attached)-1] != "Light Trail Grid" {
		t.Errorf("attached = %v", r.attached)
	}
}

func TestTransitionSequence(t *testing.T) {
	e, s, r := newTestEngine(t, MemoryStore{}, Options{})
	bus := e.Bus()
	var events []string
	bus.Subscribe(EventTransitionStarted, func(ev Event) { events = append(events, "started") })
	bus.Subscribe(EventEffectActivated, func(ev Event) { events = append(events, "activated") })

	if err := e.SetEffect(1); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	l := e.Lifecycle()
	if l.State() != StateFadingOut || l.Active() != 0 {
		t.Fatalf("state %v active %d after SetEffect", l.State(), l.Active())
	}
	if r.opacity[len(r.opacity)-1] != 0 {
		t.Error("container not faded out")
	}

	s.Advance(ms(FadeOutDelay) - 1)
	if l.State() != StateFadingOut {
		t.Fatalf("swapped early: %v", l.State())
	}
	s.Advance(ms(FadeOutDelay))
	if l.State() != StateFadingIn || l.Active() != 1 {
		t.Fatalf("state %v active %d after fade-out", l.State(), l.Active())
	}
	if r.detaches != 1 {
		t.Errorf("detaches = %d, want 1", r.detaches)
	}
	if diff := cmp.Diff([]string{"Starfield Tunnel", "Wave Field"}, r.attached); diff != "" {
		t.Errorf("attached mismatch (-want +got):\n%s", diff)
	}

	s.Advance(ms(FadeOutDelay + FadeInDelay))
	if l.State() != StateSteady {
		t.Fatalf("state %v after fade-in", l.State())
	}
	if diff := cmp.Diff([]float64{1, 0, 1}, r.opacity); diff != "" {
		t.Errorf("opacity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"started", "activated"}, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSwitchToActiveIsNoop(t *testing.T) {
	e, _, r := newTestEngine(t, MemoryStore{PrefEffect: "0"}, Options{})
	if err := e.SetEffect(3); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	if e.Lifecycle().Transitioning() || len(r.opacity) != 1 {
		t.Error("switching to the active effect started a transition")
	}
}

func TestTransitionRejectsOverlap(t *testing.T) {
	e, s, _ := newTestEngine(t, MemoryStore{}, Options{})
	if err := e.SetEffect(1); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	if err := e.SetEffect(2); !errors.Is(err, ErrTransitionInProgress) {
		t.Errorf("second SetEffect err = %v", err)
	}
	if err := e.AdvanceEffect(); !errors.Is(err, ErrTransitionInProgress) {
		t.Errorf("AdvanceEffect err = %v", err)
	}
	s.Advance(1000)
	if err := e.SetEffect(2); !errors.Is(err, ErrTransitionInProgress) {
		t.Errorf("SetEffect while fading in err = %v", err)
	}
	s.Advance(1050)
	if err := e.SetEffect(2); err != nil {
		t.Errorf("SetEffect after transition: %v", err)
	}
}

func TestAutoRotateSkipsDuringTransition(t *testing.T) {
	e, s, _ := newTestEngine(t, MemoryStore{}, Options{RotateInterval: time.Second})
	s.Advance(500)
	if err := e.AdvanceEffect(); err != nil {
		t.Fatalf("AdvanceEffect: %v", err)
	}
	// The rotation tick at 1000ms lands mid-transition and is dropped.
	s.Advance(1000)
	s.Advance(1600)
	if got := e.Lifecycle().Active(); got != 1 {
		t.Fatalf("active = %d, want 1", got)
	}
	s.Advance(2000)
	s.Advance(3100)
	if got := e.Lifecycle().Active(); got != 2 {
		t.Errorf("active = %d after the next rotation, want 2", got)
	}
}

func TestAutoRotateCycles(t *testing.T) {
	e, s, _ := newTestEngine(t, MemoryStore{}, Options{RotateInterval: 2 * time.Second})
	var seen []int
	e.Bus().Subscribe(EventEffectActivated, func(ev Event) { seen = append(seen, ev.Data) })
	run(s, 7200)
	if diff := cmp.Diff([]int{1, 2, 0}, seen); diff != "" {
		t.Errorf("rotation order mismatch (-want +got):\n%s", diff)
	}
}

func TestPreferencesPersist(t *testing.T) {
	store := MemoryStore{}
	e, s, _ := newTestEngine(t, store, Options{})

	if err := e.SetAutoRotate(false); err != nil {
		t.Fatal(err)
	}
	if store[PrefEffect] != "0" {
		t.Errorf("stored %q after disabling auto-rotate", store[PrefEffect])
	}
	if _, ok := s.NextTimer(); ok {
		t.Error("rotation timer still armed")
	}
	if err := e.SetAutoRotate(true); err != nil {
		t.Fatal(err)
	}
	if store[PrefEffect] != "auto" {
		t.Errorf("stored %q after enabling auto-rotate", store[PrefEffect])
	}
	if err := e.SetEnabled(false); err != nil {
		t.Fatal(err)
	}
	if store[PrefEnabled] != "false" {
		t.Errorf("stored %q for enabled", store[PrefEnabled])
	}
}

func TestDisableStopsAfterInFlightFrame(t *testing.T) {
	e, s, r := newTestEngine(t, MemoryStore{}, Options{})
	run(s, 1000)
	drawn := len(r.times)
	if drawn == 0 {
		t.Fatal("no frames drawn")
	}
	if last := r.times[drawn-1]; last < 0.9 {
		t.Fatalf("effect time %v after 1s", last)
	}

	if err := e.SetEnabled(false); err != nil {
		t.Fatal(err)
	}
	if !r.hidden {
		t.Error("container not hidden")
	}
	if !s.FramePending() {
		t.Fatal("in-flight frame request dropped early")
	}
	s.Tick(s.Now() + 16)
	if s.FramePending() || e.Snapshot().Running {
		t.Fatal("loop kept scheduling after disable")
	}
	run(s, 5000)
	if len(r.times) != drawn {
		t.Fatalf("drew %d frames while disabled", len(r.times)-drawn)
	}

	if err := e.SetEnabled(true); err != nil {
		t.Fatal(err)
	}
	run(s, s.Now()+200)
	if len(r.times) == drawn {
		t.Fatal("loop did not resume")
	}
	if first := r.times[drawn]; first > 0.05 {
		t.Errorf("resumed effect time %v, want measured from zero", first)
	}
}

func TestNoDuplicateLoop(t *testing.T) {
	e, s, _ := newTestEngine(t, MemoryStore{}, Options{})
	run(s, 200)

	e.SetEnabled(false)
	e.SetEnabled(true)
	if n := len(s.frames); n != 1 {
		t.Fatalf("%d frame requests queued, want 1", n)
	}

	e.SetHostVisible(false)
	e.SetHostVisible(true)
	if n := len(s.frames); n != 1 {
		t.Fatalf("%d frame requests queued after visibility flap, want 1", n)
	}

	// Once the stop has been observed exactly one start happens.
	e.SetHostVisible(false)
	s.Tick(s.Now() + 16)
	e.SetHostVisible(true)
	e.SetEnabled(true)
	e.SetHostVisible(true)
	if n := len(s.frames); n != 1 {
		t.Fatalf("%d frame requests queued after restart, want 1", n)
	}
}

func TestHostVisibilityEvents(t *testing.T) {
	e, s, r := newTestEngine(t, MemoryStore{}, Options{})
	var states []bool
	e.Bus().Subscribe(EventRunStateChanged, func(ev Event) { states = append(states, ev.On) })

	run(s, 500)
	e.Bus().Emit(Event{Type: EventHostVisibility, On: false})
	run(s, 1000)
	drawn := len(r.times)
	run(s, 2000)
	if len(r.times) != drawn {
		t.Error("drew frames while the host was hidden")
	}
	e.Bus().Emit(Event{Type: EventHostVisibility, On: true})
	run(s, 2500)
	if len(r.times) == drawn {
		t.Error("did not resume when the host became visible")
	}
	if diff := cmp.Diff([]bool{false, true}, states); diff != "" {
		t.Errorf("run states mismatch (-want +got):\n%s", diff)
	}
}

func TestPointerDrivesOrientation(t *testing.T) {
	e, s, r := newTestEngine(t, MemoryStore{PrefEffect: "0"}, Options{})
	e.Bus().Emit(Event{Type: EventPointerMove, X: 1, Y: 0})
	run(s, 1000)
	if r.last.Orientation.Yaw <= 0 {
		t.Errorf("yaw = %v, want positive after moving right", r.last.Orientation.Yaw)
	}
	if r.last.Segments > TunnelMaxConnections || r.last.LineAlpha <= 0 {
		t.Errorf("frame segments=%d alpha=%v", r.last.Segments, r.last.LineAlpha)
	}
}

func TestPointerSurvivesEffectSwitch(t *testing.T) {
	e, s, r := newTestEngine(t, MemoryStore{PrefEffect: "0"}, Options{})
	e.Bus().Emit(Event{Type: EventPointerMove, X: 0.8, Y: 0.5})
	run(s, 1000)
	before := e.pointer.Smoothed

	if err := e.SetEffect(1); err != nil {
		t.Fatal(err)
	}
	run(s, 3000)
	if got, want := e.pointer.Target, (Vec2{X: 0.8, Y: 0.5}); got != want {
		t.Errorf("target after switch = %+v, want %+v", got, want)
	}
	if got := e.pointer.Smoothed; got.X < before.X || got.Y < before.Y {
		t.Errorf("smoothed went from %+v back to %+v", before, got)
	}
	if n := e.Bus().Count(EventPointerMove); n != 1 {
		t.Errorf("pointer listeners after switch = %d, want 1", n)
	}
	if len(r.attached) != 2 || r.attached[1] != "Wave Field" {
		t.Fatalf("attached = %v", r.attached)
	}
	// The wave hint is near zero this early; the pointer still tilts the view.
	if r.last.Orientation.Yaw <= 0 {
		t.Errorf("yaw = %v, want pointer contribution after switch", r.last.Orientation.Yaw)
	}
}

func TestReinitializeKeepsHostVisibility(t *testing.T) {
	e, s, _ := newTestEngine(t, MemoryStore{}, Options{})
	e.SetHostVisible(false)
	run(s, 200)
	e.Teardown()

	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if s.FramePending() {
		t.Error("loop started while the host is hidden")
	}
	if e.Snapshot().HostVisible {
		t.Error("host visibility reset to true")
	}

	e.SetHostVisible(true)
	if !s.FramePending() {
		t.Error("loop did not start when the host became visible")
	}
	e.Teardown()
}

func TestTeardownCancelsEverything(t *testing.T) {
	e, s, r := newTestEngine(t, MemoryStore{}, Options{})
	run(s, 500)
	if err := e.SetEffect(1); err != nil {
		t.Fatal(err)
	}
	e.SetAutoRotate(true)

	e.Teardown()
	if s.Len() != 0 {
		t.Errorf("%d callbacks still scheduled", s.Len())
	}
	bus := e.Bus()
	if bus.Count(EventPointerMove) != 0 || bus.Count(EventHostVisibility) != 0 {
		t.Error("listeners still attached")
	}
	if !r.destroyed || r.detaches != 1 {
		t.Errorf("destroyed=%v detaches=%d", r.destroyed, r.detaches)
	}

	drawn := len(r.times)
	attached := len(r.attached)
	run(s, 40_000)
	if len(r.times) != drawn || len(r.attached) != attached {
		t.Error("work ran after teardown")
	}

	if err := e.Initialize(); err != nil {
		t.Fatalf("re-Initialize: %v", err)
	}
	if !s.FramePending() {
		t.Error("loop not restarted after re-Initialize")
	}
}
