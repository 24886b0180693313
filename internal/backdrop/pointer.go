package backdrop

// Pointer tracks the normalized pointer. Target is written by input events
// between frames; Smoothed is what the simulation reads.
type Pointer struct {
	Target   Vec2
	Smoothed Vec2

	// Smoothing overrides PointerSmoothing when in (0, 1].
	Smoothing float64
}

// SetTarget records a new pointer position, clamped to [-1, 1].
func (p *Pointer) SetTarget(x, y float64) {
	p.Target = Vec2{X: clampF(x, -1, 1), Y: clampF(y, -1, 1)}
}

// Update moves Smoothed a fixed fraction toward Target. Called once per
// accepted frame.
func (p *Pointer) Update() Vec2 {
	k := p.Smoothing
	if k <= 0 || k > 1 {
		k = PointerSmoothing
	}
	p.Smoothed.X += (p.Target.X - p.Smoothed.X) * k
	p.Smoothed.Y += (p.Target.Y - p.Smoothed.Y) * k
	return p.Smoothed
}

// orient combines an effect hint with the pointer-driven rotation.
func orient(hint Orientation, ptr Vec2, grid bool) Orientation {
	o := hint
	o.Yaw += ptr.X * PointerYawGain
	o.Pitch += -ptr.Y * PointerPitchGain
	if grid && o.Pitch < GridMinPitch {
		o.Pitch = GridMinPitch
	}
	return o
}
