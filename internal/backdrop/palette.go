package backdrop

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

// Floats returns the colour as normalized channels.
func (c RGB) Floats() (float32, float32, float32) {
	return float32(c.R) / 255.0, float32(c.G) / 255.0, float32(c.B) / 255.0
}

// Vec3 returns the colour as a normalized triple, the layout shader uniforms take.
func (c RGB) Vec3() [3]float32 {
	r, g, b := c.Floats()
	return [3]float32{r, g, b}
}

func lerpU8(a, b uint8, t float64) uint8 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func lerpRGB(a, b RGB, t float64) RGB {
	return RGB{R: lerpU8(a.R, b.R, t), G: lerpU8(a.G, b.G, t), B: lerpU8(a.B, b.B, t)}
}

// Palette holds the colours the built-in effects draw from.
var Palette = struct {
	TunnelCore   RGB
	TunnelEdge   RGB
	TunnelAccent RGB
	WaveDeep     RGB
	WaveCrest    RGB
	WaveFoam     RGB
	TrailCyan    RGB
	TrailMagenta RGB
	TrailAmber   RGB
	PlasmaNight  RGB
	PlasmaDusk   RGB
	PlasmaSea    RGB
	PlasmaAbyss  RGB
	PlasmaGrid   RGB
	PlasmaVoid   RGB
}{
	TunnelCore:   RGB{R: 235, G: 240, B: 255},
	TunnelEdge:   RGB{R: 120, G: 150, B: 255},
	TunnelAccent: RGB{R: 190, G: 120, B: 255},
	WaveDeep:     RGB{R: 40, G: 110, B: 200},
	WaveCrest:    RGB{R: 90, G: 200, B: 230},
	WaveFoam:     RGB{R: 210, G: 245, B: 250},
	TrailCyan:    RGB{R: 60, G: 230, B: 255},
	TrailMagenta: RGB{R: 255, G: 60, B: 200},
	TrailAmber:   RGB{R: 255, G: 180, B: 60},
	PlasmaNight:  RGB{R: 8, G: 6, B: 28},
	PlasmaDusk:   RGB{R: 40, G: 14, B: 64},
	PlasmaSea:    RGB{R: 4, G: 26, B: 48},
	PlasmaAbyss:  RGB{R: 2, G: 8, B: 20},
	PlasmaGrid:   RGB{R: 10, G: 2, B: 24},
	PlasmaVoid:   RGB{R: 0, G: 0, B: 6},
}

// pickColour draws a colour from palette, blended a random amount toward its
// neighbour so adjacent particles are not identical.
func pickColour(palette []RGB, r *Rand) RGB {
	if len(palette) == 0 {
		return RGB{R: 255, G: 255, B: 255}
	}
	i := r.Intn(len(palette))
	j := (i + 1) % len(palette)
	return lerpRGB(palette[i], palette[j], r.RangeF(0, 0.35))
}
