package backdrop

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFrameRequestsRunOnce(t *testing.T) {
	s := NewScheduler()
	calls := 0
	s.RequestFrame(func(float64) { calls++ })
	if !s.RunFrame(16) {
		t.Fatal("RunFrame reported nothing run")
	}
	if s.RunFrame(32) {
		t.Fatal("frame request ran twice")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestFrameRequestedInsideCallbackWaits(t *testing.T) {
	s := NewScheduler()
	var seen []float64
	var loop FrameFunc
	loop = func(now float64) {
		seen = append(seen, now)
		s.RequestFrame(loop)
	}
	s.RequestFrame(loop)
	s.RunFrame(10)
	s.RunFrame(20)
	if diff := cmp.Diff([]float64{10, 20}, seen); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
	if !s.FramePending() {
		t.Error("no frame pending after the loop re-requested")
	}
}

func TestCancelFrame(t *testing.T) {
	s := NewScheduler()
	ran := false
	h := s.RequestFrame(func(float64) { ran = true })
	s.Cancel(h)
	s.Cancel(h)
	s.RunFrame(16)
	if ran || s.Len() != 0 {
		t.Errorf("cancelled frame ran=%v len=%d", ran, s.Len())
	}
}

func TestTimersFireInDueOrder(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	s.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	s.AfterFunc(10*time.Millisecond, func() { order = append(order, "b") })

	s.Advance(9)
	if len(order) != 0 {
		t.Fatalf("fired early: %v", order)
	}
	s.Advance(100)
	if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 0 {
		t.Errorf("one-shot timers still pending: %d", s.Len())
	}
}

func TestEverySkipsMissedTicks(t *testing.T) {
	s := NewScheduler()
	n := 0
	s.Every(30*time.Millisecond, func() { n++ })
	s.Advance(30)
	s.Advance(60)
	if n != 2 {
		t.Fatalf("n = %d after two periods, want 2", n)
	}
	s.Advance(200)
	if n != 3 {
		t.Fatalf("n = %d after a long gap, want 3", n)
	}
	if due, ok := s.NextTimer(); !ok || due != 230 {
		t.Errorf("next due = %v, %v; want 230", due, ok)
	}
}

func TestCancelTimer(t *testing.T) {
	s := NewScheduler()
	n := 0
	h := s.Every(10*time.Millisecond, func() { n++ })
	s.Advance(10)
	s.Cancel(h)
	s.Advance(100)
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
	if _, ok := s.NextTimer(); ok {
		t.Error("cancelled timer still queued")
	}
}

func TestTimerCancelsAnother(t *testing.T) {
	s := NewScheduler()
	var second Handle
	fired := false
	s.AfterFunc(10*time.Millisecond, func() { s.Cancel(second) })
	second = s.AfterFunc(10*time.Millisecond, func() { fired = true })
	s.Advance(20)
	if fired {
		t.Error("timer cancelled by an earlier one still fired")
	}
}

func TestTickFiresTimersBeforeFrame(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.RequestFrame(func(float64) { order = append(order, "frame") })
	s.AfterFunc(5*time.Millisecond, func() { order = append(order, "timer") })
	s.Tick(16)
	if diff := cmp.Diff([]string{"timer", "frame"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if s.Now() != 16 {
		t.Errorf("Now = %v", s.Now())
	}
}

func TestAfterFuncIsRelativeToNow(t *testing.T) {
	s := NewScheduler()
	s.Advance(1000)
	s.AfterFunc(50*time.Millisecond, func() {})
	if due, _ := s.NextTimer(); due != 1050 {
		t.Errorf("due = %v, want 1050", due)
	}
}
