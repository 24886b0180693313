package render

import (
	"github.com/charmbracelet/harmonica"

	"backdrop/internal/backdrop"
)

// fader eases the backdrop opacity toward the value the engine last set.
// The engine only ever asks for 0 or 1; the spring turns that into the
// visible fade.
type fader struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
}

func newFader(fps int) fader {
	if fps <= 0 {
		fps = backdrop.TargetFPS
	}
	return fader{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		pos:    1,
		target: 1,
	}
}

func (f *fader) setTarget(alpha float64) {
	f.target = clamp01(alpha)
}

// step advances one frame and returns the opacity to draw with.
func (f *fader) step() float64 {
	f.pos, f.vel = f.spring.Update(f.pos, f.vel, f.target)
	if f.pos < 0 || f.pos > 1 {
		f.pos = clamp01(f.pos)
		f.vel = 0
	}
	return f.pos
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
