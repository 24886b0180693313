package backdrop

import "math"

// waveBehavior displaces a fixed cloud by three sinusoids and pushes
// particles away from the pointer. It keeps no aux state: Origin is the
// reference frame every step.
type waveBehavior struct{}

func (waveBehavior) Init(count int, palette []RGB, rng *Rand) *ParticleState {
	ps := NewParticleState(count, rng)
	for i := 0; i < count; i++ {
		ps.SetPos(i,
			rng.RangeF(-WaveHalfWidth, WaveHalfWidth),
			rng.RangeF(-WaveHalfWidth, WaveHalfWidth),
			rng.RangeF(-WaveHalfWidth, WaveHalfWidth),
		)
		ps.SetColour(i, pickColour(palette, rng))
		ps.Sizes[i] = float32(rng.RangeF(0.06, 0.16))
	}
	ps.snapshotOrigin()
	return ps
}

func (waveBehavior) Step(ps *ParticleState, pointer Vec2, elapsed float64) (Orientation, bool) {
	px := pointer.X * PointerWorldSpan
	py := pointer.Y * PointerWorldSpan
	for i := 0; i < ps.Count; i++ {
		ox, oy, oz := ps.OriginPos(i)
		x, y, z := waveDisplace(ox, oy, oz, elapsed)

		dx := x - px
		dy := y - py
		d := math.Hypot(dx, dy)
		if d < WavePushRadius && d > 0 {
			force := (WavePushRadius - d) / WavePushRadius * WavePushStrength
			x += dx / d * force
			y += dy / d * force
		}
		ps.SetPos(i, x, y, z)
	}
	return Orientation{
		Yaw:   math.Sin(elapsed*WaveYawRate) * WaveYawAmplitude,
		Pitch: math.Sin(elapsed*WavePitchRate) * WavePitchAmplitude,
	}, true
}

// waveDisplace returns the wave-displaced position of an origin point at
// elapsed seconds t.
func waveDisplace(ox, oy, oz, t float64) (x, y, z float64) {
	x = ox + math.Sin(t*0.7+oy*0.5)*0.35
	y = oy + math.Sin(t*1.1+ox*0.6)*0.6 + math.Cos(t*0.5+oz*0.4)*0.25
	z = oz + math.Sin(t*0.9+ox*0.3+oy*0.3)*0.4
	return
}
