package backdrop

// VisibilityController decides whether the frame loop runs. The loop runs
// only while the host is visible and the user has the backdrop enabled.
// Stopping is observed lazily at the next frame boundary; starting happens
// immediately and at most once per stopped period.
type VisibilityController struct {
	hostVisible bool
	userEnabled bool
	running     bool
}

// ShouldRun reports whether both signals allow the loop to run.
func (v *VisibilityController) ShouldRun() bool {
	return v.hostVisible && v.userEnabled
}

// Running reports whether a loop is live, including one whose stop has been
// requested but not yet observed.
func (v *VisibilityController) Running() bool { return v.running }

// SetHostVisible updates the host signal. It returns true when the caller
// must start a new loop.
func (v *VisibilityController) SetHostVisible(visible bool) bool {
	v.hostVisible = visible
	return v.claimStart()
}

// SetUserEnabled updates the user signal. It returns true when the caller
// must start a new loop.
func (v *VisibilityController) SetUserEnabled(enabled bool) bool {
	v.userEnabled = enabled
	return v.claimStart()
}

// claimStart marks the loop running if it may run and is not already.
func (v *VisibilityController) claimStart() bool {
	if !v.ShouldRun() || v.running {
		return false
	}
	v.running = true
	return true
}

// Observe is called at the top of every frame callback. A false result
// means the loop must exit without rescheduling.
func (v *VisibilityController) Observe() bool {
	if !v.ShouldRun() {
		v.running = false
		return false
	}
	return true
}

// halt marks the loop stopped without waiting for a frame boundary.
func (v *VisibilityController) halt() { v.running = false }
