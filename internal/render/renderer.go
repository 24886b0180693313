// Package render draws backdrop frames with OpenGL 4.1 core.
package render

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"backdrop/internal/backdrop"
)

const (
	pointScale    = 600.0 // sprite size in pixels at distance 1 per world unit
	lineFadeDepth = 70.0
	gridAlpha     = 0.35
)

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

// pipelineBuffers are the GPU resources of one attached effect.
type pipelineBuffers struct {
	pointVAO  uint32
	posVBO    uint32
	colorVBO  uint32
	sizeVBO   uint32
	lineVAO   uint32
	lineVBO   uint32
	count     int
	lineCap   int
	lineColor [3]float32
	grid      bool
}

// GL implements backdrop.Renderer. All methods must run on the goroutine
// that owns the GL context.
type GL struct {
	log *slog.Logger

	pointProg uint32
	ptUProj   int32
	ptUView   int32
	ptUModel  int32
	ptUScale  int32
	ptUOpac   int32

	lineProg  uint32
	lnUProj   int32
	lnUView   int32
	lnUModel  int32
	lnUColor  int32
	lnUAlpha  int32
	lnUOpac   int32
	lnUFadeZ  int32

	plasmaProg  uint32
	plUTime     int32
	plUColor1   int32
	plUColor2   int32
	plURes      int32
	plUOpac     int32
	quadVAO     uint32
	quadVBO     uint32
	gridVAO     uint32
	gridVBO     uint32
	gridVertexN int32

	cam    Camera
	fbW    int
	fbH    int
	fade   fader
	hidden bool
	drawn  bool

	pipe *pipelineBuffers
}

// New compiles the shader programs and static buffers. The GL context must
// be current on the calling goroutine.
func New(log *slog.Logger, fbW, fbH, fps int) (*GL, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	pointProg, err := linkProgram(pointVertSrc, pointFragSrc)
	if err != nil {
		return nil, fmt.Errorf("point program: %w", err)
	}
	lineProg, err := linkProgram(lineVertSrc, lineFragSrc)
	if err != nil {
		gl.DeleteProgram(pointProg)
		return nil, fmt.Errorf("line program: %w", err)
	}
	plasmaProg, err := linkProgram(plasmaVertSrc, plasmaFragSrc)
	if err != nil {
		gl.DeleteProgram(pointProg)
		gl.DeleteProgram(lineProg)
		return nil, fmt.Errorf("plasma program: %w", err)
	}

	r := &GL{
		log:        log,
		pointProg:  pointProg,
		lineProg:   lineProg,
		plasmaProg: plasmaProg,
		cam:        NewCamera(10, fbW, fbH),
		fbW:        fbW,
		fbH:        fbH,
		fade:       newFader(fps),
	}

	r.ptUProj = uniform(pointProg, "uProj")
	r.ptUView = uniform(pointProg, "uView")
	r.ptUModel = uniform(pointProg, "uModel")
	r.ptUScale = uniform(pointProg, "uPointScale")
	r.ptUOpac = uniform(pointProg, "uOpacity")

	r.lnUProj = uniform(lineProg, "uProj")
	r.lnUView = uniform(lineProg, "uView")
	r.lnUModel = uniform(lineProg, "uModel")
	r.lnUColor = uniform(lineProg, "uColor")
	r.lnUAlpha = uniform(lineProg, "uAlpha")
	r.lnUOpac = uniform(lineProg, "uOpacity")
	r.lnUFadeZ = uniform(lineProg, "uFadeDepth")

	r.plUTime = uniform(plasmaProg, "uTime")
	r.plUColor1 = uniform(plasmaProg, "uColor1")
	r.plUColor2 = uniform(plasmaProg, "uColor2")
	r.plURes = uniform(plasmaProg, "uResolution")
	r.plUOpac = uniform(plasmaProg, "uOpacity")

	// Fullscreen quad: 6 vertices, 2 triangles.
	quad := [12]float32{
		0, 0, 1, 0, 1, 1,
		0, 0, 1, 1, 0, 1,
	}
	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(&quad[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, glOffset(0))

	grid := gridVertices()
	gl.GenVertexArrays(1, &r.gridVAO)
	gl.GenBuffers(1, &r.gridVBO)
	gl.BindVertexArray(r.gridVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.gridVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(grid)*4, gl.Ptr(grid), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, glOffset(0))
	r.gridVertexN = int32(len(grid) / 3)

	gl.BindVertexArray(0)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Disable(gl.DEPTH_TEST)
	gl.ClearColor(0, 0, 0, 1)

	log.Debug("renderer ready",
		"gl", gl.GoStr(gl.GetString(gl.VERSION)),
		"framebuffer_w", fbW, "framebuffer_h", fbH)
	return r, nil
}

// Attach allocates the buffers for one effect pipeline. Colours and sizes
// are uploaded once; positions and lines stream every frame.
func (r *GL) Attach(def *backdrop.Definition, ps *backdrop.ParticleState, lines *backdrop.LineBuffer) error {
	if r.pipe != nil {
		r.Detach()
	}
	p := &pipelineBuffers{
		count:     ps.Count,
		lineCap:   lines.Cap(),
		lineColor: def.LineColor.Vec3(),
		grid:      def.Uses3DGrid,
	}

	gl.GenVertexArrays(1, &p.pointVAO)
	gl.BindVertexArray(p.pointVAO)
	p.posVBO = streamAttrib(0, 3, len(ps.Positions), nil, gl.STREAM_DRAW)
	p.colorVBO = streamAttrib(1, 3, len(ps.Colors), ps.Colors, gl.STATIC_DRAW)
	p.sizeVBO = streamAttrib(2, 1, len(ps.Sizes), ps.Sizes, gl.STATIC_DRAW)

	gl.GenVertexArrays(1, &p.lineVAO)
	gl.BindVertexArray(p.lineVAO)
	p.lineVBO = streamAttrib(0, 3, len(lines.Data), nil, gl.STREAM_DRAW)
	gl.BindVertexArray(0)

	r.pipe = p
	r.cam = NewCamera(def.CameraZ, r.fbW, r.fbH)
	if code := gl.GetError(); code != gl.NO_ERROR {
		r.Detach()
		return fmt.Errorf("renderer: attach %s: gl error 0x%x", def.Name, code)
	}
	return nil
}

// streamAttrib creates a VBO of n floats bound to attribute loc of the
// current VAO. data may be nil to only reserve storage.
func streamAttrib(loc uint32, size int32, n int, data []float32, usage uint32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	bytes := n * 4
	if bytes == 0 {
		bytes = 4
	}
	gl.BufferData(gl.ARRAY_BUFFER, bytes, ptr, usage)
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointer(loc, size, gl.FLOAT, false, size*4, glOffset(0))
	return vbo
}

// Detach releases the pipeline buffers.
func (r *GL) Detach() {
	p := r.pipe
	if p == nil {
		return
	}
	for _, id := range []uint32{p.posVBO, p.colorVBO, p.sizeVBO, p.lineVBO} {
		if id != 0 {
			gl.DeleteBuffers(1, &id)
		}
	}
	for _, id := range []uint32{p.pointVAO, p.lineVAO} {
		if id != 0 {
			gl.DeleteVertexArrays(1, &id)
		}
	}
	r.pipe = nil
}

// SetOpacity sets the opacity the backdrop eases toward.
func (r *GL) SetOpacity(alpha float64) { r.fade.setTarget(alpha) }

// SetHidden hides the whole backdrop. A hidden backdrop is cleared once so
// the last frame does not linger.
func (r *GL) SetHidden(hidden bool) {
	if hidden && !r.hidden {
		gl.Clear(gl.COLOR_BUFFER_BIT)
		r.drawn = true
	}
	r.hidden = hidden
}

// Resize follows framebuffer size changes.
func (r *GL) Resize(fbW, fbH int) {
	r.fbW, r.fbH = fbW, fbH
	r.cam.Resize(fbW, fbH)
}

// Drawn reports whether the back buffer changed since the last call, i.e.
// whether the host should swap.
func (r *GL) Drawn() bool {
	d := r.drawn
	r.drawn = false
	return d
}

// Draw renders one frame: plasma background, optional floor grid, particle
// sprites and connection lines.
func (r *GL) Draw(f *backdrop.Frame) {
	r.drawn = true
	gl.Viewport(0, 0, int32(r.fbW), int32(r.fbH))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if r.hidden || r.pipe == nil {
		return
	}
	opacity := float32(r.fade.step())
	if opacity <= 0 {
		return
	}
	p := r.pipe

	proj := r.cam.Projection()
	view := r.cam.View()
	model := Model(f.Orientation)

	gl.UseProgram(r.plasmaProg)
	gl.BindVertexArray(r.quadVAO)
	gl.Uniform1f(r.plUTime, f.Plasma.Time)
	gl.Uniform3fv(r.plUColor1, 1, &f.Plasma.Color1[0])
	gl.Uniform3fv(r.plUColor2, 1, &f.Plasma.Color2[0])
	gl.Uniform2f(r.plURes, float32(r.fbW), float32(r.fbH))
	gl.Uniform1f(r.plUOpac, opacity)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)

	gl.UseProgram(r.lineProg)
	gl.UniformMatrix4fv(r.lnUProj, 1, false, &proj[0])
	gl.UniformMatrix4fv(r.lnUView, 1, false, &view[0])
	gl.UniformMatrix4fv(r.lnUModel, 1, false, &model[0])
	gl.Uniform1f(r.lnUOpac, opacity)
	gl.Uniform1f(r.lnUFadeZ, lineFadeDepth)
	gl.Uniform3fv(r.lnUColor, 1, &p.lineColor[0])

	if p.grid {
		gl.BindVertexArray(r.gridVAO)
		gl.Uniform1f(r.lnUAlpha, gridAlpha)
		gl.DrawArrays(gl.LINES, 0, r.gridVertexN)
	}

	segs := f.Segments
	if segs > p.lineCap {
		segs = p.lineCap
	}
	if segs > 0 {
		gl.BindVertexArray(p.lineVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, p.lineVBO)
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, segs*backdrop.FloatsPerLine*4, gl.Ptr(f.Lines))
		gl.Uniform1f(r.lnUAlpha, f.LineAlpha)
		gl.DrawArrays(gl.LINES, 0, int32(segs*2))
	}

	if p.count > 0 {
		gl.UseProgram(r.pointProg)
		gl.BindVertexArray(p.pointVAO)
		if f.PositionsDirty {
			gl.BindBuffer(gl.ARRAY_BUFFER, p.posVBO)
			gl.BufferSubData(gl.ARRAY_BUFFER, 0, p.count*backdrop.FloatsPerPoint*4, gl.Ptr(f.Positions))
		}
		gl.UniformMatrix4fv(r.ptUProj, 1, false, &proj[0])
		gl.UniformMatrix4fv(r.ptUView, 1, false, &view[0])
		gl.UniformMatrix4fv(r.ptUModel, 1, false, &model[0])
		gl.Uniform1f(r.ptUScale, pointScale)
		gl.Uniform1f(r.ptUOpac, opacity)
		gl.DrawArrays(gl.POINTS, 0, int32(p.count))
	}

	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
}

// Destroy releases every GL object. The renderer must not be used after.
func (r *GL) Destroy() {
	r.Detach()
	for _, id := range []uint32{r.quadVBO, r.gridVBO} {
		if id != 0 {
			gl.DeleteBuffers(1, &id)
		}
	}
	for _, id := range []uint32{r.quadVAO, r.gridVAO} {
		if id != 0 {
			gl.DeleteVertexArrays(1, &id)
		}
	}
	for _, id := range []uint32{r.pointProg, r.lineProg, r.plasmaProg} {
		if id != 0 {
			gl.DeleteProgram(id)
		}
	}
	*r = GL{log: r.log}
}

var _ backdrop.Renderer = (*GL)(nil)
