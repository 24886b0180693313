package backdrop

// trailBehavior drives a handful of light cycles along discrete lanes and
// records where each has been.
type trailBehavior struct{}

func (trailBehavior) Init(count int, palette []RGB, rng *Rand) *ParticleState {
	ps := NewParticleState(count, rng)
	aux := &TrailAux{
		Lane:      make([]int, count),
		Speed:     make([]float64, count),
		LaneTimer: make([]float64, count),
		Trails:    make([]Trail, count),
	}
	for i := 0; i < count; i++ {
		aux.Lane[i] = rng.Range(TrailLaneMin, TrailLaneMax)
		aux.Speed[i] = rng.RangeF(TrailSpeedMin, TrailSpeedMax)
		aux.LaneTimer[i] = rng.RangeF(TrailLaneDelayMin, TrailLaneDelayMax)
		aux.Trails[i] = NewTrail(TrailHistory)
		ps.SetPos(i,
			float64(aux.Lane[i])*TrailLaneWidth,
			TrailFloorY,
			rng.RangeF(TrailSpawnZ, TrailRespawnZ),
		)
		if len(palette) > 0 {
			ps.SetColour(i, palette[i%len(palette)])
		}
		ps.Sizes[i] = 0.3
	}
	ps.Aux = aux
	ps.snapshotOrigin()
	return ps
}

func (trailBehavior) Step(ps *ParticleState, pointer Vec2, elapsed float64) (Orientation, bool) {
	aux, ok := ps.Aux.(*TrailAux)
	if !ok {
		return Orientation{}, false
	}
	rng := ps.rng
	for i := 0; i < ps.Count; i++ {
		x, y, z := ps.Pos(i)

		z += aux.Speed[i]
		if z > TrailRespawnZ {
			z = TrailSpawnZ
			aux.Trails[i].Reset()
			if rng.Chance(0.5) {
				aux.Lane[i] = rng.Range(TrailLaneMin, TrailLaneMax)
			}
		}

		if elapsed > aux.LaneTimer[i] && rng.Chance(TrailLaneChance) {
			step := 1
			if rng.Chance(0.5) {
				step = -1
			}
			aux.Lane[i] = clamp(aux.Lane[i]+step, TrailLaneMin, TrailLaneMax)
			aux.LaneTimer[i] = elapsed + rng.RangeF(TrailLaneDelayMin, TrailLaneDelayMax)
		}

		target := float64(aux.Lane[i]) * TrailLaneWidth
		x += (target - x) * TrailLaneEase

		ps.SetPos(i, x, y, z)
		aux.Trails[i].Push(Point{X: float32(x), Y: float32(y), Z: float32(z)})
	}
	return Orientation{Pitch: TrailPitch}, true
}
