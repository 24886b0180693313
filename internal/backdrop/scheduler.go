package backdrop

import (
	"container/heap"
	"time"
)

// Handle identifies a pending frame request or timer.
type Handle uint64

// FrameFunc receives the host timestamp (milliseconds) of the frame.
type FrameFunc func(now float64)

type frameReq struct {
	id Handle
	fn FrameFunc
}

type timer struct {
	id     Handle
	seq    uint64
	due    float64
	period float64 // 0 = one-shot
	fn     func()
	index  int
}

// timerHeap orders timers by due time, then by creation order.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Scheduler is a cooperative, single-threaded task queue driven by the host
// loop. Frame requests behave like requestAnimationFrame: each runs once, on
// the first RunFrame after it was made. Timers fire from Advance. Nothing
// here blocks and nothing is safe for concurrent use.
type Scheduler struct {
	now    float64
	nextID Handle
	seq    uint64

	frames []frameReq
	timers timerHeap
	live   map[Handle]*timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{live: make(map[Handle]*timer)}
}

// Now returns the timestamp of the last Advance or RunFrame.
func (s *Scheduler) Now() float64 { return s.now }

func (s *Scheduler) newID() Handle {
	s.nextID++
	return s.nextID
}

// RequestFrame queues fn for the next frame.
func (s *Scheduler) RequestFrame(fn FrameFunc) Handle {
	id := s.newID()
	s.frames = append(s.frames, frameReq{id: id, fn: fn})
	return id
}

// AfterFunc runs fn once, d after the current time.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) Handle {
	return s.addTimer(d, 0, fn)
}

// Every runs fn each period d until cancelled.
func (s *Scheduler) Every(d time.Duration, fn func()) Handle {
	p := durationMS(d)
	if p <= 0 {
		p = 1
	}
	return s.addTimer(d, p, fn)
}

func (s *Scheduler) addTimer(d time.Duration, period float64, fn func()) Handle {
	s.seq++
	t := &timer{
		id:     s.newID(),
		seq:    s.seq,
		due:    s.now + durationMS(d),
		period: period,
		fn:     fn,
	}
	heap.Push(&s.timers, t)
	s.live[t.id] = t
	return t.id
}

// Cancel drops a pending frame request or timer. Unknown or already-fired
// handles are ignored.
func (s *Scheduler) Cancel(h Handle) {
	if h == 0 {
		return
	}
	if t, ok := s.live[h]; ok {
		delete(s.live, h)
		if t.index >= 0 {
			heap.Remove(&s.timers, t.index)
		}
		return
	}
	for i, f := range s.frames {
		if f.id == h {
			s.frames = append(s.frames[:i], s.frames[i+1:]...)
			return
		}
	}
}

// Advance moves the clock to now and fires every timer due by then, in due
// order. Repeating timers that fell more than a period behind skip the
// missed ticks instead of firing in a burst.
func (s *Scheduler) Advance(now float64) {
	if now > s.now {
		s.now = now
	}
	for len(s.timers) > 0 && s.timers[0].due <= s.now {
		t := heap.Pop(&s.timers).(*timer)
		if t.period > 0 {
			t.due += t.period
			if t.due <= s.now {
				t.due = s.now + t.period
			}
			s.seq++
			t.seq = s.seq
			heap.Push(&s.timers, t)
		} else {
			delete(s.live, t.id)
		}
		t.fn()
	}
}

// RunFrame runs the frame callbacks queued before this call. Requests made
// by those callbacks wait for the next RunFrame. It reports whether any
// callback ran.
func (s *Scheduler) RunFrame(now float64) bool {
	if now > s.now {
		s.now = now
	}
	if len(s.frames) == 0 {
		return false
	}
	batch := s.frames
	s.frames = nil
	for _, f := range batch {
		f.fn(s.now)
	}
	return true
}

// Tick fires due timers then runs one frame.
func (s *Scheduler) Tick(now float64) bool {
	s.Advance(now)
	return s.RunFrame(now)
}

// FramePending reports whether a frame callback is queued.
func (s *Scheduler) FramePending() bool { return len(s.frames) > 0 }

// NextTimer returns the due time of the earliest timer.
func (s *Scheduler) NextTimer() (float64, bool) {
	if len(s.timers) == 0 {
		return 0, false
	}
	return s.timers[0].due, true
}

// Len returns the number of pending frame requests and timers.
func (s *Scheduler) Len() int { return len(s.frames) + len(s.timers) }

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
