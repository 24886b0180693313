package backdrop

// Aux is the effect-specific per-particle memory carried next to the shared
// particle arrays. Implementations: *TunnelAux, *TrailAux.
type Aux interface {
	aux()
}

// ParticleState holds the mutable per-particle arrays of the active effect.
// Positions and Colors are x,y,z / r,g,b triples, Sizes has one entry per
// particle. Origin is a copy of the init-time positions.
type ParticleState struct {
	Count     int
	Positions []float32
	Colors    []float32
	Sizes     []float32
	Origin    []float32
	Aux       Aux

	rng *Rand
}

// NewParticleState allocates arrays for count particles.
func NewParticleState(count int, rng *Rand) *ParticleState {
	if count < 0 {
		count = 0
	}
	if rng == nil {
		rng = NewRand(1)
	}
	return &ParticleState{
		Count:     count,
		Positions: make([]float32, count*FloatsPerPoint),
		Colors:    make([]float32, count*FloatsPerPoint),
		Sizes:     make([]float32, count),
		rng:       rng,
	}
}

// Pos returns the position of particle i.
func (ps *ParticleState) Pos(i int) (x, y, z float64) {
	o := i * FloatsPerPoint
	return float64(ps.Positions[o]), float64(ps.Positions[o+1]), float64(ps.Positions[o+2])
}

// SetPos stores the position of particle i.
func (ps *ParticleState) SetPos(i int, x, y, z float64) {
	o := i * FloatsPerPoint
	ps.Positions[o] = float32(x)
	ps.Positions[o+1] = float32(y)
	ps.Positions[o+2] = float32(z)
}

// OriginPos returns the init-time position of particle i.
func (ps *ParticleState) OriginPos(i int) (x, y, z float64) {
	o := i * FloatsPerPoint
	return float64(ps.Origin[o]), float64(ps.Origin[o+1]), float64(ps.Origin[o+2])
}

// SetColour stores the colour of particle i.
func (ps *ParticleState) SetColour(i int, c RGB) {
	o := i * FloatsPerPoint
	ps.Colors[o], ps.Colors[o+1], ps.Colors[o+2] = c.Floats()
}

// snapshotOrigin freezes the current positions as the reference frame.
func (ps *ParticleState) snapshotOrigin() {
	ps.Origin = make([]float32, len(ps.Positions))
	copy(ps.Origin, ps.Positions)
}

// Release drops the arrays so a torn-down state cannot be drawn again.
func (ps *ParticleState) Release() {
	ps.Count = 0
	ps.Positions = nil
	ps.Colors = nil
	ps.Sizes = nil
	ps.Origin = nil
	ps.Aux = nil
}

// TunnelAux is the polar description of each tunnel particle.
type TunnelAux struct {
	Angle  []float64
	Radius []float64
	Speed  []float64
}

func (*TunnelAux) aux() {}

// TrailAux carries lane, speed and trail history of each trail particle.
type TrailAux struct {
	Lane      []int
	Speed     []float64
	LaneTimer []float64 // elapsed seconds after which a lane change may happen
	Trails    []Trail
}

func (*TrailAux) aux() {}

// Point is one recorded trail position.
type Point struct {
	X, Y, Z float32
}

// Trail is a fixed-capacity FIFO of recent positions. Pushing onto a full
// trail evicts the oldest point.
type Trail struct {
	pts  []Point
	head int // index of the oldest point
	n    int
}

// NewTrail returns an empty trail holding at most capacity points.
func NewTrail(capacity int) Trail {
	if capacity < 1 {
		capacity = 1
	}
	return Trail{pts: make([]Point, capacity)}
}

// Len returns the number of points stored.
func (t *Trail) Len() int { return t.n }

// Cap returns the maximum number of points.
func (t *Trail) Cap() int { return len(t.pts) }

// Push appends p as the newest point.
func (t *Trail) Push(p Point) {
	if len(t.pts) == 0 {
		return
	}
	if t.n < len(t.pts) {
		t.pts[(t.head+t.n)%len(t.pts)] = p
		t.n++
		return
	}
	// Circular overwrite.
	t.pts[t.head] = p
	t.head = (t.head + 1) % len(t.pts)
}

// At returns the i-th point, 0 being the oldest.
func (t *Trail) At(i int) Point {
	return t.pts[(t.head+i)%len(t.pts)]
}

// Reset empties the trail without releasing its storage.
func (t *Trail) Reset() {
	t.head = 0
	t.n = 0
}
