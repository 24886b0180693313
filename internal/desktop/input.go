package desktop

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"backdrop/internal/backdrop"
)

type actionKind int

const (
	actToggleEnabled actionKind = iota + 1
	actAdvance
	actToggleAuto
	actSelect
	actQuit
)

type action struct {
	kind   actionKind
	effect int // actSelect only
}

type binding struct {
	key glfw.Key
	act action
}

var bindings = []binding{
	{glfw.KeySpace, action{kind: actToggleEnabled}},
	{glfw.KeyRight, action{kind: actAdvance}},
	{glfw.KeyN, action{kind: actAdvance}},
	{glfw.KeyA, action{kind: actToggleAuto}},
	{glfw.Key1, action{kind: actSelect, effect: 0}},
	{glfw.Key2, action{kind: actSelect, effect: 1}},
	{glfw.Key3, action{kind: actSelect, effect: 2}},
	{glfw.KeyEscape, action{kind: actQuit}},
}

type Input struct {
	prevKeys map[glfw.Key]bool
}

func NewInput() *Input {
	return &Input{prevKeys: make(map[glfw.Key]bool)}
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

// Poll returns the actions whose keys went down since the last call, in
// binding order.
func (in *Input) Poll(window *glfw.Window, out []action) []action {
	out = out[:0]
	for _, b := range bindings {
		if in.JustPressed(window, b.key) {
			out = append(out, b.act)
		}
	}
	return out
}

// apply runs one keyboard action against the engine. actQuit is handled by
// the host loop.
func apply(eng *backdrop.Engine, a action) error {
	switch a.kind {
	case actToggleEnabled:
		return eng.SetEnabled(!eng.Snapshot().Enabled)
	case actAdvance:
		return eng.AdvanceEffect()
	case actToggleAuto:
		return eng.SetAutoRotate(!eng.Snapshot().AutoRotate)
	case actSelect:
		return eng.SetEffect(a.effect)
	}
	return nil
}

// normalizeCursor maps a window-space cursor position to [-1,1] on both
// axes with +Y up. Positions outside the window are clamped.
func normalizeCursor(cx, cy float64, winW, winH int) (float64, float64) {
	if winW <= 0 || winH <= 0 {
		return 0, 0
	}
	x := cx/float64(winW)*2 - 1
	y := 1 - cy/float64(winH)*2
	return clampUnit(x), clampUnit(y)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
