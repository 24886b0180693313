package backdrop

// PlasmaUniforms feed the animated background shader.
type PlasmaUniforms struct {
	Time   float32
	Color1 [3]float32
	Color2 [3]float32
}

// Frame is everything a renderer needs to draw one accepted frame. The
// slices alias engine-owned buffers and are only valid during Draw.
type Frame struct {
	Positions      []float32
	PositionsDirty bool
	Lines          []float32
	Segments       int
	LineAlpha      float32
	Orientation    Orientation
	Plasma         PlasmaUniforms
}

// Renderer draws frames for the engine. Attach creates the GPU resources for
// one effect pipeline and Detach releases them; at most one pipeline is
// attached at a time.
type Renderer interface {
	Attach(def *Definition, ps *ParticleState, lines *LineBuffer) error
	Detach()
	Draw(f *Frame)
	SetOpacity(alpha float64)
	SetHidden(hidden bool)
	Destroy()
}

// Backend creates the renderer at Initialize time. An error means the
// rendering backend is unavailable.
type Backend func() (Renderer, error)
