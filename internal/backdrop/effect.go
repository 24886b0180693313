package backdrop

import "math"

type ConnectionPolicy uint8

const (
	NearestNeighbor ConnectionPolicy = iota
	LightTrail
)

func (p ConnectionPolicy) String() string {
	switch p {
	case NearestNeighbor:
		return "nearest-neighbor"
	case LightTrail:
		return "light-trail"
	}
	return "unknown"
}

// Vec2 is a normalized pointer coordinate pair.
type Vec2 struct {
	X, Y float64
}

// Orientation is a yaw/pitch pair in radians applied to every rotating layer.
type Orientation struct {
	Yaw, Pitch float64
}

// Behavior is the simulation half of an effect. Init builds fresh particle
// state; Step advances it in place and may return an orientation hint.
type Behavior interface {
	Init(count int, palette []RGB, rng *Rand) *ParticleState
	Step(ps *ParticleState, pointer Vec2, elapsed float64) (Orientation, bool)
}

// Plasma holds the two colours of the animated background shader.
type Plasma struct {
	Color1, Color2 RGB
}

// Definition describes one effect. Definitions are built once and never
// mutated.
type Definition struct {
	Name           string
	ParticleCount  int
	MaxConnections int
	Policy         ConnectionPolicy
	MaxDistance    float64 // NearestNeighbor only
	LineOpacity    float64
	AnimatedLines  bool

	// Renderer hints.
	Uses3DGrid      bool
	UsesLightTrails bool
	CameraZ         float64
	LineColor       RGB
	Palette         []RGB
	Plasma          Plasma

	Behavior Behavior
}

// Initialize builds the particle state for this effect.
func (d *Definition) Initialize(rng *Rand) *ParticleState {
	return d.Behavior.Init(d.ParticleCount, d.Palette, rng)
}

// LineAlpha returns the connection opacity at elapsed seconds.
func (d *Definition) LineAlpha(elapsed float64) float32 {
	a := d.LineOpacity
	if d.AnimatedLines {
		a *= 0.6 + 0.4*math.Sin(elapsed*2)
	}
	return float32(clampF(a, 0, 1))
}

// Catalog is the ordered, read-only list of known effects.
type Catalog []Definition

// At returns the definition for index, wrapped into range.
func (c Catalog) At(index int) *Definition {
	return &c[wrapIndex(index, len(c))]
}

// Entry is the selector-facing view of one catalog item.
type Entry struct {
	Index int
	Name  string
}

// Entries lists the catalog for a selector control.
func (c Catalog) Entries() []Entry {
	out := make([]Entry, len(c))
	for i := range c {
		out[i] = Entry{Index: i, Name: c[i].Name}
	}
	return out
}

// DefaultCatalog returns the built-in effects: tunnel, wave, trail grid.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Name:           "Starfield Tunnel",
			ParticleCount:  TunnelParticles,
			MaxConnections: TunnelMaxConnections,
			Policy:         NearestNeighbor,
			MaxDistance:    TunnelMaxDistance,
			LineOpacity:    0.25,
			CameraZ:        5,
			LineColor:      Palette.TunnelEdge,
			Palette:        []RGB{Palette.TunnelCore, Palette.TunnelEdge, Palette.TunnelAccent},
			Plasma:         Plasma{Color1: Palette.PlasmaNight, Color2: Palette.PlasmaDusk},
			Behavior:       tunnelBehavior{},
		},
		{
			Name:           "Wave Field",
			ParticleCount:  WaveParticles,
			MaxConnections: WaveMaxConnections,
			Policy:         NearestNeighbor,
			MaxDistance:    WaveMaxDistance,
			LineOpacity:    0.35,
			AnimatedLines:  true,
			CameraZ:        14,
			LineColor:      Palette.WaveCrest,
			Palette:        []RGB{Palette.WaveDeep, Palette.WaveCrest, Palette.WaveFoam},
			Plasma:         Plasma{Color1: Palette.PlasmaSea, Color2: Palette.PlasmaAbyss},
			Behavior:       waveBehavior{},
		},
		{
			Name:            "Light Trail Grid",
			ParticleCount:   TrailParticles,
			MaxConnections:  TrailMaxConnections,
			Policy:          LightTrail,
			LineOpacity:     0.9,
			AnimatedLines:   true,
			Uses3DGrid:      true,
			UsesLightTrails: true,
			CameraZ:         12,
			LineColor:       Palette.TrailCyan,
			Palette:         []RGB{Palette.TrailCyan, Palette.TrailMagenta, Palette.TrailAmber},
			Plasma:          Plasma{Color1: Palette.PlasmaGrid, Color2: Palette.PlasmaVoid},
			Behavior:        trailBehavior{},
		},
	}
}
