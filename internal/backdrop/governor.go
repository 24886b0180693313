package backdrop

import "math"

// FrameGovernor caps the simulation cadence at a target rate regardless of
// how often the host fires frame callbacks. Timestamps are milliseconds.
type FrameGovernor struct {
	interval float64
	last     float64
}

// NewFrameGovernor returns a governor admitting at most fps frames a second.
func NewFrameGovernor(fps int) *FrameGovernor {
	if fps <= 0 {
		fps = TargetFPS
	}
	return &FrameGovernor{interval: 1000.0 / float64(fps)}
}

// Interval returns the frame interval in milliseconds.
func (g *FrameGovernor) Interval() float64 { return g.interval }

// Admit reports whether a frame may run at now. A rejected call leaves the
// governor untouched. An admitted one keeps the phase of the previous frame
// so rounding up to the next host callback does not accumulate drift.
func (g *FrameGovernor) Admit(now float64) bool {
	elapsed := now - g.last
	if elapsed < g.interval {
		return false
	}
	g.last = now - math.Mod(elapsed, g.interval)
	return true
}

// Clock measures effect-local elapsed seconds from host timestamps in
// milliseconds. A fresh or restarted clock reads zero.
type Clock struct {
	start   float64
	started bool
}

// Start (re)starts the clock at now.
func (c *Clock) Start(now float64) {
	c.start = now
	c.started = true
}

// Running reports whether Start has been called.
func (c *Clock) Running() bool { return c.started }

// Elapsed returns the seconds since Start. It reads zero before Start and
// never goes negative.
func (c *Clock) Elapsed(now float64) float64 {
	if !c.started || now < c.start {
		return 0
	}
	return (now - c.start) / 1000.0
}
