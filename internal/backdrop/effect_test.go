package backdrop

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInitializeArrayLengths(t *testing.T) {
	for _, def := range DefaultCatalog() {
		for _, n := range []int{0, 1, 7, def.ParticleCount} {
			ps := def.Behavior.Init(n, def.Palette, NewRand(9))
			if ps.Count != n {
				t.Errorf("%s n=%d: Count = %d", def.Name, n, ps.Count)
			}
			if len(ps.Positions) != 3*n || len(ps.Colors) != 3*n || len(ps.Sizes) != n {
				t.Errorf("%s n=%d: lengths pos=%d col=%d size=%d",
					def.Name, n, len(ps.Positions), len(ps.Colors), len(ps.Sizes))
			}
			if len(ps.Origin) != 3*n {
				t.Errorf("%s n=%d: origin length %d", def.Name, n, len(ps.Origin))
			}
		}
	}
}

func TestInitializeDeterministic(t *testing.T) {
	for _, def := range DefaultCatalog() {
		a := def.Initialize(NewRand(1234))
		b := def.Initialize(NewRand(1234))
		if diff := cmp.Diff(a.Positions, b.Positions); diff != "" {
			t.Errorf("%s positions differ for equal seeds (-a +b):\n%s", def.Name, diff)
		}
		if diff := cmp.Diff(a.Colors, b.Colors); diff != "" {
			t.Errorf("%s colours differ for equal seeds (-a +b):\n%s", def.Name, diff)
		}
	}
}

func TestTunnelDepthBounds(t *testing.T) {
	def := DefaultCatalog().At(0)
	ps := def.Initialize(NewRand(7))
	rng := NewRand(99)
	for frame := 0; frame < 2000; frame++ {
		ptr := Vec2{X: rng.RangeF(-1, 1), Y: rng.RangeF(-1, 1)}
		if _, ok := def.Behavior.Step(ps, ptr, float64(frame)/30); ok {
			t.Fatal("tunnel returned an orientation hint")
		}
		for i := 0; i < ps.Count; i++ {
			_, _, z := ps.Pos(i)
			if z < TunnelDepthFar || z > TunnelRespawnZ {
				t.Fatalf("frame %d particle %d: z = %v", frame, i, z)
			}
		}
	}
}

func TestTunnelKeepsRadius(t *testing.T) {
	def := DefaultCatalog().At(0)
	ps := def.Initialize(NewRand(3))
	aux := ps.Aux.(*TunnelAux)
	for frame := 0; frame < 50; frame++ {
		def.Behavior.Step(ps, Vec2{X: 0.5, Y: -0.5}, 0)
	}
	for i := 0; i < ps.Count; i++ {
		x, y, _ := ps.Pos(i)
		r := math.Hypot(x, y)
		if math.Abs(r-aux.Radius[i]) > 1e-3 {
			t.Fatalf("particle %d: radius %v, want %v", i, r, aux.Radius[i])
		}
	}
}

func TestAngleDeltaRange(t *testing.T) {
	var angles []float64
	for a := -20.0; a <= 20.0; a += 0.37 {
		angles = append(angles, a)
	}
	angles = append(angles, 0, math.Pi, -math.Pi, 2*math.Pi, 3*math.Pi, -3*math.Pi, 1e6)
	for _, a := range angles {
		for _, b := range angles {
			d := angDiff(a, b)
			if !(d > -math.Pi-1e-12 && d <= math.Pi+1e-12) {
				t.Fatalf("angDiff(%v, %v) = %v", a, b, d)
			}
			if got := tunnelAngleStep(a, b); math.Abs(got-d*TunnelAngleEase) > 1e-15 {
				t.Fatalf("tunnelAngleStep(%v, %v) = %v, want %v", a, b, got, d*TunnelAngleEase)
			}
		}
	}
	if d := angDiff(math.Pi, 0); d != math.Pi {
		t.Errorf("angDiff(pi, 0) = %v, want pi", d)
	}
}

func TestTrailBounds(t *testing.T) {
	def := DefaultCatalog().At(2)
	ps := def.Initialize(NewRand(5))
	aux := ps.Aux.(*TrailAux)
	for frame := 0; frame < 3000; frame++ {
		hint, ok := def.Behavior.Step(ps, Vec2{}, float64(frame)/30)
		if !ok || hint.Pitch != TrailPitch {
			t.Fatalf("frame %d: hint %+v, %v", frame, hint, ok)
		}
		for i := 0; i < ps.Count; i++ {
			if l := aux.Trails[i].Len(); l < 0 || l > TrailHistory {
				t.Fatalf("frame %d particle %d: trail length %d", frame, i, l)
			}
			if lane := aux.Lane[i]; lane < TrailLaneMin || lane > TrailLaneMax {
				t.Fatalf("frame %d particle %d: lane %d", frame, i, lane)
			}
			_, y, z := ps.Pos(i)
			if y != TrailFloorY || z > TrailRespawnZ {
				t.Fatalf("frame %d particle %d: y=%v z=%v", frame, i, y, z)
			}
		}
	}
}

func TestTrailLanesChange(t *testing.T) {
	def := DefaultCatalog().At(2)
	ps := def.Initialize(NewRand(11))
	aux := ps.Aux.(*TrailAux)
	start := append([]int(nil), aux.Lane...)
	for frame := 0; frame < 600; frame++ {
		def.Behavior.Step(ps, Vec2{}, float64(frame)/30)
	}
	if cmp.Equal(start, aux.Lane) {
		t.Errorf("no particle changed lane in 20 seconds")
	}
}

func TestWaveHintAndDisplacement(t *testing.T) {
	def := DefaultCatalog().At(1)
	ps := def.Initialize(NewRand(2))
	pointer := Vec2{X: -1, Y: -1} // world (-5,-5)
	hint, ok := def.Behavior.Step(ps, pointer, 2)
	if !ok {
		t.Fatal("wave returned no hint")
	}
	want := Orientation{
		Yaw:   math.Sin(2*WaveYawRate) * WaveYawAmplitude,
		Pitch: math.Sin(2*WavePitchRate) * WavePitchAmplitude,
	}
	if diff := cmp.Diff(want, hint); diff != "" {
		t.Errorf("hint mismatch (-want +got):\n%s", diff)
	}
	for i := 0; i < ps.Count; i++ {
		ox, oy, oz := ps.OriginPos(i)
		x, y, z := waveDisplace(ox, oy, oz, 2)
		if math.Hypot(x+5, y+5) < WavePushRadius {
			continue
		}
		gx, gy, gz := ps.Pos(i)
		if math.Abs(gx-x) > 1e-5 || math.Abs(gy-y) > 1e-5 || math.Abs(gz-z) > 1e-5 {
			t.Fatalf("particle %d: got (%v,%v,%v) want (%v,%v,%v)", i, gx, gy, gz, x, y, z)
		}
	}
}

func TestWavePointerPush(t *testing.T) {
	ps := NewParticleState(1, NewRand(1))
	ps.SetPos(0, 0, 0, 0)
	ps.snapshotOrigin()

	// At t=0 the origin is displaced to (0, 0.25, 0); the pointer sits at
	// world (1, 0), inside the push radius.
	waveBehavior{}.Step(ps, Vec2{X: 0.2}, 0)
	x, y, _ := ps.Pos(0)
	before := math.Hypot(0-1, 0.25)
	after := math.Hypot(x-1, y)
	if after <= before {
		t.Fatalf("distance to pointer %v, want more than %v", after, before)
	}
	wantPush := (WavePushRadius - before) / WavePushRadius * WavePushStrength
	if math.Abs(after-before-wantPush) > 1e-5 {
		t.Errorf("push %v, want %v", after-before, wantPush)
	}

	// The push does not accumulate across frames.
	waveBehavior{}.Step(ps, Vec2{X: 0.2}, 0)
	x2, y2, _ := ps.Pos(0)
	if x2 != x || y2 != y {
		t.Errorf("second step moved particle to (%v,%v), want (%v,%v)", x2, y2, x, y)
	}
}

func TestLineAlpha(t *testing.T) {
	c := DefaultCatalog()
	if got := c.At(0).LineAlpha(12.3); got != float32(c.At(0).LineOpacity) {
		t.Errorf("static alpha = %v, want %v", got, c.At(0).LineOpacity)
	}
	wave := c.At(1)
	if got := wave.LineAlpha(math.Pi / 4); math.Abs(float64(got)-wave.LineOpacity) > 1e-6 {
		t.Errorf("peak alpha = %v, want %v", got, wave.LineOpacity)
	}
	for tm := 0.0; tm < 10; tm += 0.1 {
		a := float64(wave.LineAlpha(tm))
		if a < 0.2*wave.LineOpacity-1e-6 || a > wave.LineOpacity+1e-6 {
			t.Fatalf("alpha %v at %v out of range", a, tm)
		}
	}
}

func TestCatalogWraps(t *testing.T) {
	c := DefaultCatalog()
	if got := c.At(5).Name; got != c[2].Name {
		t.Errorf("At(5) = %q, want %q", got, c[2].Name)
	}
	if got := c.At(-1).Name; got != c[2].Name {
		t.Errorf("At(-1) = %q, want %q", got, c[2].Name)
	}
	want := []Entry{
		{Index: 0, Name: "Starfield Tunnel"},
		{Index: 1, Name: "Wave Field"},
		{Index: 2, Name: "Light Trail Grid"},
	}
	if diff := cmp.Diff(want, c.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestReleaseDropsArrays(t *testing.T) {
	ps := DefaultCatalog().At(2).Initialize(NewRand(1))
	ps.Release()
	if ps.Count != 0 || ps.Positions != nil || ps.Aux != nil {
		t.Errorf("state not released: %+v", ps)
	}
}
