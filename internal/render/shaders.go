package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Particle vertex shader: perspective point sprites with per-vertex
// colour and size.
const pointVertSrc = `#version 410 core

layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aColor;
layout(location = 2) in float aSize;

uniform mat4 uProj;
uniform mat4 uView;
uniform mat4 uModel;
uniform float uPointScale;

out vec3 vColor;

void main() {
    vec4 viewPos = uView * uModel * vec4(aPos, 1.0);
    gl_Position = uProj * viewPos;
    float dist = max(-viewPos.z, 0.1);
    gl_PointSize = clamp(aSize * uPointScale / dist, 1.0, 64.0);
    vColor = aColor;
}
` + "\x00"

// Particle fragment shader: round sprite with quadratic falloff, additive.
const pointFragSrc = `#version 410 core

uniform float uOpacity;

in vec3 vColor;
out vec4 FragColor;

void main() {
    float dist = length(gl_PointCoord - vec2(0.5)) * 2.0;
    if (dist > 1.0) discard;
    float falloff = 1.0 - dist;
    falloff = falloff * falloff;
    FragColor = vec4(vColor * falloff * uOpacity, 1.0);
}
` + "\x00"

// Line vertex shader: connection segments and the floor grid.
const lineVertSrc = `#version 410 core

layout(location = 0) in vec3 aPos;

uniform mat4 uProj;
uniform mat4 uView;
uniform mat4 uModel;

out float vDepth;

void main() {
    vec4 viewPos = uView * uModel * vec4(aPos, 1.0);
    gl_Position = uProj * viewPos;
    vDepth = -viewPos.z;
}
` + "\x00"

// Line fragment shader: flat colour, fading out with distance.
const lineFragSrc = `#version 410 core

uniform vec3 uColor;
uniform float uAlpha;
uniform float uOpacity;
uniform float uFadeDepth;

in float vDepth;
out vec4 FragColor;

void main() {
    float fog = clamp(1.0 - vDepth / uFadeDepth, 0.0, 1.0);
    FragColor = vec4(uColor * uAlpha * fog * uOpacity, 1.0);
}
` + "\x00"

// Plasma vertex shader: fullscreen quad.
const plasmaVertSrc = `#version 410 core

layout(location = 0) in vec2 aPos;

out vec2 vUV;

void main() {
    vUV = aPos;
    gl_Position = vec4(aPos * 2.0 - 1.0, 0.0, 1.0);
}
` + "\x00"

// Plasma fragment shader: slow sum-of-sines field between two colours.
const plasmaFragSrc = `#version 410 core

uniform float uTime;
uniform vec3 uColor1;
uniform vec3 uColor2;
uniform vec2 uResolution;
uniform float uOpacity;

in vec2 vUV;
out vec4 FragColor;

void main() {
    vec2 p = vUV * 2.0 - 1.0;
    p.x *= uResolution.x / max(uResolution.y, 1.0);
    float v = sin(p.x * 3.0 + uTime * 0.4);
    v += sin(p.y * 2.0 - uTime * 0.3);
    v += sin((p.x + p.y) * 2.5 + uTime * 0.2);
    v += sin(length(p) * 4.0 - uTime * 0.5);
    float m = 0.5 + 0.5 * sin(v * 0.8);
    FragColor = vec4(mix(uColor1, uColor2, m) * uOpacity, 1.0);
}
` + "\x00"

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(buf))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(buf, "\x00"))
	}
	return shader, nil
}

func linkProgram(vertSrc, fragSrc string) (uint32, error) {
	vs, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(buf))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(buf, "\x00"))
	}
	return program, nil
}

func uniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
