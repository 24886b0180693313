package backdrop

// startLoop restarts the effect clock and issues the single frame request
// of a new loop. Callers get permission from VisibilityController first.
func (e *Engine) startLoop() {
	if e.pipe != nil {
		e.pipe.clock.Start(e.sched.Now())
	}
	e.frameReq = e.sched.RequestFrame(e.onFrame)
	e.bus.Emit(Event{Type: EventRunStateChanged, On: true})
	e.log.Debug("frame loop started")
}

// onFrame is the host frame callback. Visibility changes are observed here
// and only here, so a stop never interrupts a frame in progress.
func (e *Engine) onFrame(now float64) {
	e.frameReq = 0
	if !e.vis.Observe() {
		e.bus.Emit(Event{Type: EventRunStateChanged, On: false})
		e.log.Debug("frame loop stopped", "frames", e.frames)
		return
	}
	if e.gov.Admit(now) {
		e.step(now)
	}
	e.frameReq = e.sched.RequestFrame(e.onFrame)
}

// step simulates and draws one accepted frame.
func (e *Engine) step(now float64) {
	p := e.pipe
	if p == nil || e.renderer == nil {
		return
	}
	ptr := e.pointer.Update()
	elapsed := p.clock.Elapsed(now)

	hint, _ := p.def.Behavior.Step(p.state, ptr, elapsed)
	o := orient(hint, ptr, p.def.Uses3DGrid)
	n := BuildConnections(p.lines, p.def, p.state)

	e.frame = Frame{
		Positions:      p.state.Positions,
		PositionsDirty: true,
		Lines:          p.lines.Data,
		Segments:       n,
		LineAlpha:      p.def.LineAlpha(elapsed),
		Orientation:    o,
		Plasma: PlasmaUniforms{
			Time:   float32(elapsed),
			Color1: p.def.Plasma.Color1.Vec3(),
			Color2: p.def.Plasma.Color2.Vec3(),
		},
	}
	e.renderer.Draw(&e.frame)
	e.frames++
}
