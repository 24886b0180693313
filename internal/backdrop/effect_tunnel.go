package backdrop

import "math"

// tunnelBehavior flies particles on an annulus toward the camera. The whole
// field swirls toward the pointer's polar angle.
type tunnelBehavior struct{}

func (tunnelBehavior) Init(count int, palette []RGB, rng *Rand) *ParticleState {
	ps := NewParticleState(count, rng)
	aux := &TunnelAux{
		Angle:  make([]float64, count),
		Radius: make([]float64, count),
		Speed:  make([]float64, count),
	}
	for i := 0; i < count; i++ {
		aux.Angle[i] = rng.RangeF(0, 2*math.Pi)
		aux.Radius[i] = rng.RangeF(TunnelRadiusMin, TunnelRadiusMax)
		aux.Speed[i] = rng.RangeF(TunnelSpeedMin, TunnelSpeedMax)
		z := rng.RangeF(TunnelDepthFar, TunnelDepthNear)
		ps.SetPos(i,
			math.Cos(aux.Angle[i])*aux.Radius[i],
			math.Sin(aux.Angle[i])*aux.Radius[i],
			z,
		)
		ps.SetColour(i, pickColour(palette, rng))
		ps.Sizes[i] = float32(rng.RangeF(0.05, 0.2))
	}
	ps.Aux = aux
	ps.snapshotOrigin()
	return ps
}

func (tunnelBehavior) Step(ps *ParticleState, pointer Vec2, elapsed float64) (Orientation, bool) {
	aux, ok := ps.Aux.(*TunnelAux)
	if !ok {
		return Orientation{}, false
	}
	target := math.Atan2(pointer.Y*PointerWorldSpan, pointer.X*PointerWorldSpan)
	for i := 0; i < ps.Count; i++ {
		_, _, z := ps.Pos(i)
		z += aux.Speed[i]
		if z > TunnelRespawnZ {
			z = ps.rng.RangeF(TunnelDepthFar, TunnelDepthNear)
		}
		aux.Angle[i] += tunnelAngleStep(aux.Angle[i], target)
		ps.SetPos(i,
			math.Cos(aux.Angle[i])*aux.Radius[i],
			math.Sin(aux.Angle[i])*aux.Radius[i],
			z,
		)
	}
	return Orientation{}, false
}

// tunnelAngleStep eases angle toward target along the shorter arc.
func tunnelAngleStep(angle, target float64) float64 {
	return angDiff(angle, target) * TunnelAngleEase
}
